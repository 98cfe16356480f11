package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// idempotencyModule scopes Idempotency-Key values for sales.
const idempotencyModule = "sales"

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter Filter) ([]Sale, error)
	Get(ctx context.Context, id int64) (Sale, error)
	Delete(ctx context.Context, id int64) error
}

// CostSource resolves the current unit cost of recipes.
type CostSource interface {
	Costs(ctx context.Context, recipeIDs []int64) (map[int64]decimal.Decimal, error)
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

// CacheInvalidator drops cached reports after a mutation.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// Recorder receives sales metrics.
type Recorder interface {
	ObserveSale(product string, units int, revenue float64)
}

// Deps bundles the collaborators of Service.
type Deps struct {
	Repo        RepositoryPort
	Costs       CostSource
	Audit       AuditPort
	Idempotency IdempotencyPort
	Cache       CacheInvalidator
	Metrics     Recorder
	Logger      *slog.Logger
}

// Service runs the sales ledger.
type Service struct {
	repo        RepositoryPort
	costs       CostSource
	audit       AuditPort
	idempotency IdempotencyPort
	cache       CacheInvalidator
	metrics     Recorder
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds Service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        deps.Repo,
		costs:       deps.Costs,
		audit:       deps.Audit,
		idempotency: deps.Idempotency,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Sell records one sale and takes its quantity out of the recipe's prepared stock.
func (s *Service) Sell(ctx context.Context, in SellInput) (Sale, error) {
	out, err := s.record(ctx, []Line{in.Line}, in.SoldAt, in.IdempotencyKey, "sales:sell")
	if err != nil {
		return Sale{}, err
	}
	return out[0], nil
}

// Checkout sells every line of a cart in one transaction. Either all lines are recorded or none.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) ([]Sale, error) {
	if len(in.Lines) == 0 {
		return nil, ErrEmptyCheckout
	}
	if len(in.Lines) > maxCheckoutLines {
		return nil, fmt.Errorf("%w: at most %d items per checkout", shared.ErrInvalidArgument, maxCheckoutLines)
	}
	return s.record(ctx, in.Lines, in.SoldAt, in.IdempotencyKey, "sales:checkout")
}

// List returns sales newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]Sale, error) {
	items, err := s.repo.List(ctx, filter.normalize())
	if err != nil {
		return nil, err
	}
	if err := s.attachCosts(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	items := []Sale{sale}
	if err := s.attachCosts(ctx, items); err != nil {
		return Sale{}, err
	}
	return items[0], nil
}

// Delete removes a sale record without returning its quantity to prepared stock.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.recordAudit(ctx, shared.AuditLog{
		Action:   "sales:delete",
		Entity:   "sale",
		EntityID: strconv.FormatInt(id, 10),
	})
	return nil
}

func (s *Service) record(ctx context.Context, lines []Line, soldAt *time.Time, key, action string) ([]Sale, error) {
	for i, line := range lines {
		if err := validateLine(line); err != nil {
			if len(lines) > 1 {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			return nil, err
		}
	}
	at := s.now().UTC()
	if soldAt != nil {
		at = soldAt.UTC()
	}

	insertedKey := false
	if key != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, idempotencyModule); err != nil {
			return nil, err
		}
		insertedKey = true
	}

	var out []Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		out = out[:0]
		products := make([]ProductRef, len(lines))
		need := make(map[int64]float64)
		for i, line := range lines {
			p, err := tx.GetProduct(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %q", ErrProductInactive, p.Name)
			}
			products[i] = p
			need[p.RecipeID] += float64(line.Quantity)
		}

		ids := make([]int64, 0, len(need))
		for id := range need {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		locked, err := tx.LockRecipes(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			rec, ok := locked[id]
			if !ok {
				return fmt.Errorf("%w: recipe %d", shared.ErrNotFound, id)
			}
			if need[id] > rec.PreparedQuantity+stockTolerance {
				return fmt.Errorf("%w: requested %s of %q, only %s prepared",
					shared.ErrInsufficientStock, formatQty(need[id]), rec.Name, formatQty(rec.PreparedQuantity))
			}
			if err := tx.AddPrepared(ctx, id, -need[id]); err != nil {
				return err
			}
		}

		for i, line := range lines {
			p := products[i]
			price := p.Price
			if line.UnitPrice != nil {
				price = *line.UnitPrice
			}
			sale, err := tx.InsertSale(ctx, Sale{
				ProductID:    p.ID,
				ProductName:  p.Name,
				RecipeID:     p.RecipeID,
				Quantity:     line.Quantity,
				UnitPrice:    price,
				SoldAt:       at,
				ProductPrice: p.Price,
			})
			if err != nil {
				return err
			}
			out = append(out, sale)
		}
		// A sale is never answered with an unknown cost.
		return s.attachCosts(ctx, out)
	})
	if err != nil {
		if insertedKey {
			if delErr := s.idempotency.Delete(context.WithoutCancel(ctx), key, idempotencyModule); delErr != nil {
				s.logger.Warn("release idempotency key", slog.Any("error", delErr))
			}
		}
		return nil, err
	}

	s.invalidate(ctx)
	for _, sale := range out {
		if s.metrics != nil {
			s.metrics.ObserveSale(sale.ProductName, sale.Quantity, sale.TotalPrice().InexactFloat64())
		}
		s.recordAudit(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "sale",
			EntityID: strconv.FormatInt(sale.ID, 10),
			Meta: map[string]any{
				"product_id": sale.ProductID,
				"quantity":   sale.Quantity,
				"unit_price": sale.UnitPrice.StringFixed(PricePlaces),
			},
		})
	}
	return out, nil
}

func (s *Service) attachCosts(ctx context.Context, items []Sale) error {
	if len(items) == 0 || s.costs == nil {
		return nil
	}
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, sale := range items {
		if _, ok := seen[sale.RecipeID]; ok {
			continue
		}
		seen[sale.RecipeID] = struct{}{}
		ids = append(ids, sale.RecipeID)
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

func (s *Service) recordAudit(ctx context.Context, log shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("audit log failed", slog.String("action", log.Action), slog.Any("error", err))
	}
}

func validateLine(line Line) error {
	if line.ProductID <= 0 {
		return fmt.Errorf("%w: product is required", shared.ErrInvalidArgument)
	}
	if line.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if line.UnitPrice != nil {
		if line.UnitPrice.Sign() < 0 {
			return fmt.Errorf("%w: unit_price must be >= 0", shared.ErrInvalidArgument)
		}
		if !line.UnitPrice.Equal(line.UnitPrice.Truncate(PricePlaces)) {
			return fmt.Errorf("%w: unit_price must have at most %d decimal places", shared.ErrInvalidArgument, PricePlaces)
		}
	}
	return nil
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
