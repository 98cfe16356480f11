package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// FactSource loads sale facts for a half-open time range.
type FactSource interface {
	Facts(ctx context.Context, from, to time.Time) ([]Fact, error)
}

// CostSource resolves the current unit cost of recipes. Nil ids cover every recipe.
type CostSource interface {
	Costs(ctx context.Context, recipeIDs []int64) (map[int64]decimal.Decimal, error)
}

// ReportQuery carries raw report parameters.
type ReportQuery struct {
	StartDate string
	EndDate   string
	Period    string
}

// Service computes sales reports and the dashboard.
type Service struct {
	facts  FactSource
	costs  CostSource
	cache  *Cache
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
	group  singleflight.Group
}

// NewService builds Service. A nil cache computes every request directly.
func NewService(facts FactSource, costs CostSource, cache *Cache, loc *time.Location, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{facts: facts, costs: costs, cache: cache, loc: loc, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Report buckets the sales between two inclusive calendar dates.
func (s *Service) Report(ctx context.Context, q ReportQuery) ([]Bucket, error) {
	period, err := ParsePeriod(q.Period)
	if err != nil {
		return nil, err
	}
	start, err := s.parseDate("start_date", q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate("end_date", q.EndDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start_date must not be after end_date", shared.ErrInvalidArgument)
	}

	var out []Bucket
	err = s.cached(ctx, &out, func(ctx context.Context) (any, error) {
		facts, costs, err := s.load(ctx, start, end.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		return Aggregate(facts, costs, period, s.loc), nil
	}, "report", string(period), q.StartDate, q.EndDate, s.loc.String())
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Dashboard summarizes today and the trailing week. Concurrent calls for the same day share one
// computation.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now()
	today := PeriodDay.Start(now.In(s.loc))
	label := PeriodDay.Label(today)
	v, err, _ := s.group.Do("dashboard:"+label, func() (any, error) {
		var d Dashboard
		err := s.cached(ctx, &d, func(ctx context.Context) (any, error) {
			from := today.AddDate(0, 0, -(dashboardDays - 1))
			facts, costs, err := s.load(ctx, from, today.AddDate(0, 0, 1))
			if err != nil {
				return nil, err
			}
			return BuildDashboard(facts, costs, now, s.loc), nil
		}, "dashboard", label, s.loc.String())
		return d, err
	})
	if err != nil {
		return Dashboard{}, err
	}
	return v.(Dashboard), nil
}

// load fetches facts and recipe costs concurrently.
func (s *Service) load(ctx context.Context, from, to time.Time) ([]Fact, map[int64]decimal.Decimal, error) {
	var (
		facts []Fact
		costs map[int64]decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facts, err = s.facts.Facts(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		costs, err = s.costs.Costs(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return facts, costs, nil
}

// cached serves dest from the report cache, falling back to the loader when Redis is unavailable.
func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("report cache unavailable", slog.Any("error", err))
		return (*Cache)(nil).FetchJSON(ctx, "", dest, loader)
	}
	var loaderErr error
	err = s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		v, err := loader(ctx)
		loaderErr = err
		return v, err
	})
	if err == nil || loaderErr != nil {
		return err
	}
	s.logger.Warn("report cache failed", slog.String("key", key), slog.Any("error", err))
	return (*Cache)(nil).FetchJSON(ctx, key, dest, loader)
}

func (s *Service) parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", shared.ErrInvalidArgument, field)
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", shared.ErrInvalidArgument, field)
	}
	return t, nil
}
