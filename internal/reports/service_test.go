package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

type stubFacts struct {
	mu    sync.Mutex
	facts []Fact
	calls int
	err   error
}

func (s *stubFacts) Facts(ctx context.Context, from, to time.Time) ([]Fact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []Fact
	for _, f := range s.facts {
		if !f.SoldAt.Before(from) && f.SoldAt.Before(to) {
			out = append(out, f)
		}
	}
	return out, nil
}

type stubCosts map[int64]decimal.Decimal

func (c stubCosts) Costs(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	return c, nil
}

func newTestService(t *testing.T, cache *Cache) (*Service, *stubFacts) {
	t.Helper()
	facts := &stubFacts{facts: []Fact{
		fact("2024-03-04T08:00:00Z", 3, "5.00", 1),
		fact("2024-03-05T08:00:00Z", 2, "1.50", 2),
		fact("2024-03-10T08:00:00Z", 1, "5.00", 1),
	}}
	svc := NewService(facts, stubCosts(testCosts), cache, time.UTC, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) })
	return svc, facts
}

func TestReportValidation(t *testing.T) {
	svc, facts := newTestService(t, nil)
	ctx := context.Background()

	cases := []ReportQuery{
		{StartDate: "2024-03-01"},
		{StartDate: "03/01/2024", EndDate: "2024-03-31"},
		{StartDate: "2024-03-01", EndDate: "2024-03-31", Period: "quarter"},
		{StartDate: "2024-03-31", EndDate: "2024-03-01"},
	}
	for _, q := range cases {
		_, err := svc.Report(ctx, q)
		require.ErrorIs(t, err, shared.ErrInvalidArgument, "%+v", q)
	}
	require.Zero(t, facts.calls)
}

func TestReportInclusiveRange(t *testing.T) {
	svc, _ := newTestService(t, nil)

	buckets, err := svc.Report(context.Background(), ReportQuery{StartDate: "2024-03-05", EndDate: "2024-03-10"})
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	require.Equal(t, "2024-03-05", buckets[0].Period)
	require.Equal(t, "2024-03-10", buckets[1].Period)

	buckets, err = svc.Report(context.Background(), ReportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31", Period: "week"})
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, "Week of 2024-03-04", buckets[0].Period)
	require.Equal(t, 6, buckets[0].ItemsSold)
	require.Equal(t, "23", buckets[0].Revenue.String())
	require.Equal(t, "9", buckets[0].Cost.String())
}

func TestReportCachedUntilBump(t *testing.T) {
	cache := newTestCache(t)
	svc, facts := newTestService(t, cache)
	ctx := context.Background()
	q := ReportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31", Period: "month"}

	first, err := svc.Report(ctx, q)
	require.NoError(t, err)
	second, err := svc.Report(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, facts.calls)
	require.Equal(t, first[0].Period, second[0].Period)
	require.True(t, first[0].Revenue.Equal(second[0].Revenue))

	require.NoError(t, cache.Bump(ctx))
	_, err = svc.Report(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 2, facts.calls)
}

func TestReportPropagatesLoadError(t *testing.T) {
	svc, facts := newTestService(t, newTestCache(t))
	facts.err = errors.New("db down")

	_, err := svc.Report(context.Background(), ReportQuery{StartDate: "2024-03-01", EndDate: "2024-03-31"})
	require.EqualError(t, err, "db down")
}

func TestDashboard(t *testing.T) {
	svc, facts := newTestService(t, newTestCache(t))
	ctx := context.Background()

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, d.Today.Transactions)
	require.Equal(t, "5", d.Today.Revenue.String())
	require.Equal(t, 3, d.Week.Transactions)
	require.Len(t, d.Chart, 7)
	require.Equal(t, "2024-03-04", d.Chart[0].Period)

	_, err = svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, facts.calls)
}
