package recipes

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id int64) (Recipe, error)
	Delete(ctx context.Context, id int64) error
	RequirementsByRecipe(ctx context.Context, recipeIDs []int64) (map[int64][]Requirement, error)
	ListRequirements(ctx context.Context, filter RequirementFilter) ([]Requirement, error)
	GetRequirement(ctx context.Context, id int64) (Requirement, error)
	DeleteRequirement(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheInvalidator drops cached reports after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Service coordinates recipe definitions.
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

// List returns every recipe with its requirements.
func (s *Service) List(ctx context.Context) ([]Recipe, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, rec := range items {
		ids = append(ids, rec.ID)
	}
	reqs, err := s.repo.RequirementsByRecipe(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Requirements = reqs[items[i].ID]
	}
	return items, nil
}

// Get returns one recipe with its requirements.
func (s *Service) Get(ctx context.Context, id int64) (Recipe, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Recipe{}, err
	}
	reqs, err := s.repo.RequirementsByRecipe(ctx, []int64{id})
	if err != nil {
		return Recipe{}, err
	}
	rec.Requirements = reqs[id]
	return rec, nil
}

// Create stores a recipe together with its requirement lines.
func (s *Service) Create(ctx context.Context, in RecipeInput, lines []RequirementInput) (Recipe, error) {
	if err := validateRecipe(in); err != nil {
		return Recipe{}, err
	}
	if err := validateRequirements(lines); err != nil {
		return Recipe{}, err
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.Insert(ctx, in)
		if err != nil {
			return err
		}
		id = rec.ID
		return replaceRequirements(ctx, tx, id, lines)
	})
	if err != nil {
		return Recipe{}, err
	}
	return s.Get(ctx, id)
}

// Update applies a partial update. A non-nil Requirements replaces the requirement set in the same
// transaction.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Recipe, error) {
	if in.Requirements != nil {
		if err := validateRequirements(*in.Requirements); err != nil {
			return Recipe{}, err
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		next := in.Apply(current)
		if err := validateRecipe(RecipeInput{Name: next.Name, Instructions: next.Instructions, PreparationTime: next.PreparationTime}); err != nil {
			return err
		}
		if _, err := tx.Update(ctx, next); err != nil {
			return err
		}
		if in.Requirements == nil {
			return nil
		}
		return replaceRequirements(ctx, tx, id, *in.Requirements)
	})
	if err != nil {
		return Recipe{}, err
	}
	if in.Requirements != nil {
		s.invalidate(ctx)
	}
	return s.Get(ctx, id)
}

// SetIngredients atomically replaces the full requirement set. prepared_quantity is not touched.
func (s *Service) SetIngredients(ctx context.Context, id int64, lines []RequirementInput) (Recipe, error) {
	if err := validateRequirements(lines); err != nil {
		return Recipe{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		return replaceRequirements(ctx, tx, id, lines)
	})
	if err != nil {
		return Recipe{}, err
	}
	s.invalidate(ctx)
	s.record(ctx, "recipe:set_ingredients", id, map[string]any{"lines": len(lines)})
	return s.Get(ctx, id)
}

// Delete removes a recipe with its requirement lines, products and production history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListRequirements lists requirement lines, optionally for one recipe.
func (s *Service) ListRequirements(ctx context.Context, filter RequirementFilter) ([]Requirement, error) {
	return s.repo.ListRequirements(ctx, filter)
}

// GetRequirement returns one requirement line.
func (s *Service) GetRequirement(ctx context.Context, id int64) (Requirement, error) {
	return s.repo.GetRequirement(ctx, id)
}

// AddRequirement appends one ingredient line to a recipe.
func (s *Service) AddRequirement(ctx context.Context, recipeID int64, line RequirementInput) (Requirement, error) {
	if err := validateRequirements([]RequirementInput{line}); err != nil {
		return Requirement{}, err
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, recipeID); err != nil {
			return err
		}
		if err := ensureIngredients(ctx, tx, []RequirementInput{line}); err != nil {
			return err
		}
		var err error
		id, err = tx.InsertRequirement(ctx, recipeID, line)
		return err
	})
	if err != nil {
		return Requirement{}, err
	}
	s.invalidate(ctx)
	return s.repo.GetRequirement(ctx, id)
}

// UpdateRequirement changes the per-unit quantity of one line.
func (s *Service) UpdateRequirement(ctx context.Context, id int64, qty float64) (Requirement, error) {
	if err := validateQuantity(qty); err != nil {
		return Requirement{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetRequirementForUpdate(ctx, id); err != nil {
			return err
		}
		return tx.UpdateRequirementQuantity(ctx, id, qty)
	})
	if err != nil {
		return Requirement{}, err
	}
	s.invalidate(ctx)
	return s.repo.GetRequirement(ctx, id)
}

// DeleteRequirement removes one line.
func (s *Service) DeleteRequirement(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRequirement(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Costs returns the current unit cost of each recipe. A nil id slice covers every recipe;
// recipes without requirements cost zero and may be absent from the map.
func (s *Service) Costs(ctx context.Context, recipeIDs []int64) (map[int64]decimal.Decimal, error) {
	grouped, err := s.repo.RequirementsByRecipe(ctx, recipeIDs)
	if err != nil {
		return nil, err
	}
	costs := make(map[int64]decimal.Decimal, len(grouped))
	for id, reqs := range grouped {
		costs[id] = Cost(reqs)
	}
	return costs, nil
}

func replaceRequirements(ctx context.Context, tx TxRepository, recipeID int64, lines []RequirementInput) error {
	if err := ensureIngredients(ctx, tx, lines); err != nil {
		return err
	}
	return tx.ReplaceRequirements(ctx, recipeID, lines)
}

func ensureIngredients(ctx context.Context, tx TxRepository, lines []RequirementInput) error {
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.IngredientID)
	}
	missing, err := tx.MissingIngredients(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		parts := make([]string, 0, len(missing))
		for _, id := range missing {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
		return fmt.Errorf("%w: %s", ErrIngredientNotFound, strings.Join(parts, ", "))
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

func (s *Service) record(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "recipe", EntityID: strconv.FormatInt(id, 10), Meta: meta})
	if err != nil {
		s.logger.Warn("audit recipe", slog.String("action", action), slog.Any("error", err))
	}
}

func validateRecipe(in RecipeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrInvalidArgument)
	}
	if len(name) > 100 {
		return fmt.Errorf("%w: name must be at most 100 characters", shared.ErrInvalidArgument)
	}
	if in.PreparationTime < 0 {
		return fmt.Errorf("%w: preparation_time must be >= 0", shared.ErrInvalidArgument)
	}
	return nil
}

func validateRequirements(lines []RequirementInput) error {
	seen := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		if line.IngredientID <= 0 {
			return fmt.Errorf("%w: ingredient is required", shared.ErrInvalidArgument)
		}
		if err := validateQuantity(line.Quantity); err != nil {
			return err
		}
		if _, dup := seen[line.IngredientID]; dup {
			return fmt.Errorf("%w: ingredient %d listed more than once", shared.ErrInvalidArgument, line.IngredientID)
		}
		seen[line.IngredientID] = struct{}{}
	}
	return nil
}

func validateQuantity(qty float64) error {
	if math.IsNaN(qty) || math.IsInf(qty, 0) || qty <= 0 {
		return fmt.Errorf("%w: quantity must be greater than zero", shared.ErrInvalidArgument)
	}
	return nil
}
