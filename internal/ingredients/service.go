package ingredients

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Ingredient, error)
	ListLowStock(ctx context.Context) ([]Ingredient, error)
	Get(ctx context.Context, id int64) (Ingredient, error)
	Create(ctx context.Context, in CreateInput) (Ingredient, error)
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached reports after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates ingredient stock operations.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: cache, logger: logger}
}

// List returns every ingredient.
func (s *Service) List(ctx context.Context) ([]Ingredient, error) {
	return s.repo.List(ctx)
}

// ListLowStock returns ingredients whose stock is at or below min_threshold.
func (s *Service) ListLowStock(ctx context.Context) ([]Ingredient, error) {
	return s.repo.ListLowStock(ctx)
}

// Get returns one ingredient.
func (s *Service) Get(ctx context.Context, id int64) (Ingredient, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new ingredient.
func (s *Service) Create(ctx context.Context, in CreateInput) (Ingredient, error) {
	if err := validateValues(in.MinThreshold, in.CostPerUnit.Sign()); err != nil {
		return Ingredient{}, err
	}
	in.CostPerUnit = in.CostPerUnit.Round(CostPlaces)
	ing, err := s.repo.Create(ctx, in)
	if err != nil {
		return Ingredient{}, err
	}
	s.invalidate(ctx)
	return ing, nil
}

// Update applies a partial update under a row lock.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Ingredient, error) {
	minThreshold := 0.0
	if in.MinThreshold != nil {
		minThreshold = *in.MinThreshold
	}
	costSign := 0
	if in.CostPerUnit != nil {
		costSign = in.CostPerUnit.Sign()
	}
	if err := validateValues(minThreshold, costSign); err != nil {
		return Ingredient{}, err
	}
	var updated Ingredient
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.Update(ctx, in.Apply(current))
		return err
	})
	if err != nil {
		return Ingredient{}, err
	}
	if in.changesReports() {
		s.invalidate(ctx)
	}
	return updated, nil
}

// Delete removes an ingredient and, by cascade, its recipe requirement lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Restock adds amount to the ingredient's stock.
func (s *Service) Restock(ctx context.Context, id int64, amount float64) (Ingredient, error) {
	if !(amount > 0) {
		return Ingredient{}, ErrInvalidAmount
	}
	var (
		before  float64
		updated Ingredient
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before = current.Quantity
		current.Quantity += amount
		updated, err = tx.Update(ctx, current)
		return err
	})
	if err != nil {
		return Ingredient{}, err
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			Action:   "ingredient:restock",
			Entity:   "ingredient",
			EntityID: strconv.FormatInt(id, 10),
			Meta: map[string]any{
				"amount": amount,
				"before": before,
				"after":  updated.Quantity,
			},
		})
		if err != nil {
			s.logger.Warn("audit restock", slog.Int64("ingredient_id", id), slog.Any("error", err))
		}
	}
	return updated, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func validateValues(minThreshold float64, costSign int) error {
	if minThreshold < 0 {
		return fmt.Errorf("%w: min_threshold must be >= 0", shared.ErrInvalidArgument)
	}
	if costSign < 0 {
		return fmt.Errorf("%w: cost_per_unit must be >= 0", shared.ErrInvalidArgument)
	}
	return nil
}
