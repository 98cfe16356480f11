package production

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/internal/recipes"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// idempotencyModule scopes Idempotency-Key values for production runs.
const idempotencyModule = "production"

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter Filter) ([]Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	TopRecipes(ctx context.Context, limit int) ([]RecipeTotal, error)
	DailySince(ctx context.Context, since time.Time, loc *time.Location) ([]DailyTotal, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards against replayed requests.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Recorder receives production metrics.
type Recorder interface {
	ObserveProduction(recipe string, quantity float64)
}

// Service runs the production ledger.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	metrics     Recorder
	logger      *slog.Logger
	loc         *time.Location
	now         func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem IdempotencyPort, metrics Recorder, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, audit: audit, idempotency: idem, metrics: metrics, loc: loc, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Produce converts ingredient stock into prepared recipe units. The feasibility check and the
// deductions run against rows locked in the same transaction, so either every ingredient is
// deducted, the record is written and prepared_quantity grows by quantity, or nothing changes.
func (s *Service) Produce(ctx context.Context, in ProduceInput) (Record, error) {
	if in.RecipeID <= 0 {
		return Record{}, fmt.Errorf("%w: recipe is required", shared.ErrInvalidArgument)
	}
	if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
		return Record{}, ErrInvalidQuantity
	}

	insertedKey := false
	if in.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, idempotencyModule); err != nil {
			return Record{}, err
		}
		insertedKey = true
	}

	var record Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		recipe, err := tx.LockRecipe(ctx, in.RecipeID)
		if err != nil {
			return err
		}
		reqs, err := tx.LockRequirements(ctx, recipe.ID)
		if err != nil {
			return err
		}
		possible := recipes.MaxPortions(reqs)
		if in.Quantity > possible+recipes.StockTolerance {
			return fmt.Errorf("%w: cannot prepare %s of %q, current stock allows %s",
				shared.ErrInsufficientStock, formatQty(in.Quantity), recipe.Name, formatQty(possible))
		}
		for _, req := range reqs {
			need := req.Quantity * in.Quantity
			remaining := req.Stock - need
			if remaining < -recipes.StockTolerance {
				return fmt.Errorf("%w: %s needs %s %s, %s available",
					shared.ErrInsufficientStock, req.IngredientName, formatQty(need), req.IngredientUnit, formatQty(req.Stock))
			}
			// Float noise only; real leftovers are kept.
			if math.Abs(remaining) < recipes.StockTolerance {
				remaining = 0
			}
			if err := tx.SetStock(ctx, req.IngredientID, remaining); err != nil {
				return err
			}
		}
		if _, err := tx.AddPrepared(ctx, recipe.ID, in.Quantity); err != nil {
			return err
		}
		record, err = tx.InsertRecord(ctx, Record{
			RecipeID:   recipe.ID,
			RecipeName: recipe.Name,
			Quantity:   in.Quantity,
			Notes:      in.Notes,
			ProducedAt: s.now().UTC(),
		})
		return err
	})
	if err != nil {
		if insertedKey {
			if delErr := s.idempotency.Delete(context.WithoutCancel(ctx), in.IdempotencyKey, idempotencyModule); delErr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return Record{}, err
	}

	if s.metrics != nil {
		s.metrics.ObserveProduction(record.RecipeName, record.Quantity)
	}
	if s.audit != nil {
		err := s.audit.Record(ctx, shared.AuditLog{
			Action:   "production:produce",
			Entity:   "production_record",
			EntityID: strconv.FormatInt(record.ID, 10),
			Meta: map[string]any{
				"recipe_id": record.RecipeID,
				"quantity":  record.Quantity,
				"notes":     record.Notes,
			},
		})
		if err != nil {
			s.logger.Warn("audit production", slog.Int64("record_id", record.ID), slog.Any("error", err))
		}
	}
	return record, nil
}

// List returns production records newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	return s.repo.List(ctx, filter.normalize())
}

// Get returns one production record.
func (s *Service) Get(ctx context.Context, id int64) (Record, error) {
	return s.repo.Get(ctx, id)
}

// Summary reports the most produced recipes and the daily production of the last 30 days.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	top, err := s.repo.TopRecipes(ctx, summaryTopN)
	if err != nil {
		return Summary{}, err
	}
	since := s.now().Add(-summaryWindow)
	daily, err := s.repo.DailySince(ctx, since, s.loc)
	if err != nil {
		return Summary{}, err
	}
	return Summary{TopRecipes: top, Daily: daily}, nil
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
