package products

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter Filter) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, in CreateInput) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// CostSource resolves the current unit cost of recipes.
type CostSource interface {
	Costs(ctx context.Context, recipeIDs []int64) (map[int64]decimal.Decimal, error)
}

// CacheInvalidator drops cached reports after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service manages the product catalog.
type Service struct {
	repo   RepositoryPort
	costs  CostSource
	cache  CacheInvalidator
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, costs CostSource, cache CacheInvalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, costs: costs, cache: cache, logger: logger}
}

// List returns products with their current cost.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.attachCosts(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one product with its current cost.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	items := []Product{p}
	if err := s.attachCosts(ctx, items); err != nil {
		return Product{}, err
	}
	return items[0], nil
}

// Create adds a product to the catalog.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if err := validate(in.RecipeID, in.Name, in.Price); err != nil {
		return Product{}, err
	}
	id, err := s.repo.Create(ctx, in)
	if err != nil {
		return Product{}, err
	}
	return s.Get(ctx, id)
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Product, error) {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next := in.Apply(current)
		if err := validate(next.RecipeID, next.Name, next.Price); err != nil {
			return err
		}
		return tx.Update(ctx, next)
	})
	if err != nil {
		return Product{}, err
	}
	if in.RecipeID != nil {
		s.invalidate(ctx)
	}
	return s.Get(ctx, id)
}

// Delete removes a product that has no recorded sales.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) attachCosts(ctx context.Context, items []Product) error {
	if len(items) == 0 || s.costs == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, p := range items {
		if _, ok := seen[p.RecipeID]; ok {
			continue
		}
		seen[p.RecipeID] = struct{}{}
		ids = append(ids, p.RecipeID)
	}
	costs, err := s.costs.Costs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Cost = costs[items[i].RecipeID]
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func validate(recipeID int64, name string, price decimal.Decimal) error {
	if recipeID <= 0 {
		return fmt.Errorf("%w: recipe is required", shared.ErrInvalidArgument)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidArgument)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", shared.ErrInvalidArgument)
	}
	if price.Sign() < 0 {
		return fmt.Errorf("%w: price must be >= 0", shared.ErrInvalidArgument)
	}
	if !price.Equal(price.Truncate(PricePlaces)) {
		return fmt.Errorf("%w: price must have at most %d decimal places", shared.ErrInvalidArgument, PricePlaces)
	}
	return nil
}
