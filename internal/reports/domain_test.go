package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

func fact(at string, qty int, price string, recipe int64) Fact {
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic(err)
	}
	return Fact{SoldAt: ts, Quantity: qty, UnitPrice: decimal.RequireFromString(price), RecipeID: recipe}
}

var testCosts = map[int64]decimal.Decimal{
	1: decimal.RequireFromString("2.00"),
	2: decimal.RequireFromString("0.50"),
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	require.Equal(t, PeriodDay, p)

	_, err = ParsePeriod("year")
	require.ErrorIs(t, err, shared.ErrInvalidArgument)
}

func TestPeriodStartAndLabel(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 23, 59, 0, 0, time.UTC)
	require.Equal(t, "2024-03-10", PeriodDay.Label(PeriodDay.Start(sunday)))
	require.Equal(t, "Week of 2024-03-04", PeriodWeek.Label(PeriodWeek.Start(sunday)))
	require.Equal(t, "2024-03", PeriodMonth.Label(PeriodMonth.Start(sunday)))

	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	require.Equal(t, monday, PeriodWeek.Start(monday))
}

func TestAggregatePartitionsSales(t *testing.T) {
	facts := []Fact{
		fact("2024-03-04T08:00:00Z", 3, "5.00", 1),
		fact("2024-03-04T17:00:00Z", 2, "1.50", 2),
		fact("2024-03-06T10:00:00Z", 1, "5.00", 1),
		fact("2024-03-11T09:00:00Z", 4, "1.50", 2),
	}

	days := Aggregate(facts, testCosts, PeriodDay, time.UTC)
	require.Len(t, days, 3)
	require.Equal(t, "2024-03-04", days[0].Period)
	require.Equal(t, 2, days[0].Transactions)
	require.Equal(t, 5, days[0].ItemsSold)
	require.Equal(t, "18", days[0].Revenue.String())
	require.Equal(t, "7", days[0].Cost.String())
	require.Equal(t, "11", days[0].Profit().String())

	weeks := Aggregate(facts, testCosts, PeriodWeek, time.UTC)
	require.Len(t, weeks, 2)
	require.Equal(t, "Week of 2024-03-04", weeks[0].Period)
	require.Equal(t, "Week of 2024-03-11", weeks[1].Period)

	total := 0
	for _, b := range weeks {
		total += b.ItemsSold
	}
	require.Equal(t, 10, total)

	months := Aggregate(facts, testCosts, PeriodMonth, time.UTC)
	require.Len(t, months, 1)
	require.Equal(t, 4, months[0].Transactions)
}

func TestAggregateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	facts := []Fact{fact("2024-03-04T22:30:00Z", 1, "5.00", 1)}

	days := Aggregate(facts, testCosts, PeriodDay, loc)
	require.Len(t, days, 1)
	require.Equal(t, "2024-03-05", days[0].Period)
}

func TestTotalsMargin(t *testing.T) {
	require.Zero(t, Totals{}.ProfitMargin())
	tot := Summarize([]Fact{fact("2024-03-04T08:00:00Z", 1, "5.00", 1)}, testCosts)
	require.InDelta(t, 60, tot.ProfitMargin(), 1e-9)
}

func TestBuildDashboardZeroFillsChart(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	facts := []Fact{
		fact("2024-03-03T12:00:00Z", 9, "5.00", 1),
		fact("2024-03-04T12:00:00Z", 1, "5.00", 1),
		fact("2024-03-10T09:00:00Z", 2, "1.50", 2),
	}

	d := BuildDashboard(facts, testCosts, now, time.UTC)
	require.Equal(t, 1, d.Today.Transactions)
	require.Equal(t, "3", d.Today.Revenue.String())
	require.Equal(t, 2, d.Week.Transactions)
	require.Equal(t, "8", d.Week.Revenue.String())
	require.Len(t, d.Chart, 7)
	require.Equal(t, "2024-03-04", d.Chart[0].Period)
	require.Equal(t, "2024-03-10", d.Chart[6].Period)
	require.Equal(t, 1, d.Chart[0].Transactions)
	require.Zero(t, d.Chart[3].Transactions)
	require.True(t, d.Chart[3].Revenue.IsZero())
}
