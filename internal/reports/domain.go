package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// MoneyPlaces is the number of fractional digits of report money figures.
const MoneyPlaces = 2

// dashboardDays is the number of calendar days covered by the dashboard week and chart.
const dashboardDays = 7

var hundred = decimal.NewFromInt(100)

// Period is a report bucket granularity.
type Period string

// Supported periods.
const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty defaults to day.
func ParsePeriod(raw string) (Period, error) {
	switch Period(raw) {
	case "":
		return PeriodDay, nil
	case PeriodDay, PeriodWeek, PeriodMonth:
		return Period(raw), nil
	default:
		return "", fmt.Errorf("%w: invalid period %q, choose from: day, week, month", shared.ErrInvalidArgument, raw)
	}
}

// Start truncates t, in its own location, to the beginning of the bucket containing it. Weeks
// begin on Monday.
func (p Period) Start(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return day
	}
}

// Label formats a bucket start.
func (p Period) Label(start time.Time) string {
	switch p {
	case PeriodWeek:
		return "Week of " + start.Format(time.DateOnly)
	case PeriodMonth:
		return start.Format("2006-01")
	default:
		return start.Format(time.DateOnly)
	}
}

// Fact is the slice of a sale that reports aggregate.
type Fact struct {
	SoldAt    time.Time
	Quantity  int
	UnitPrice decimal.Decimal
	RecipeID  int64
}

// Totals aggregates a set of sales.
type Totals struct {
	Transactions int             `json:"transactions"`
	ItemsSold    int             `json:"items_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
}

// Profit is revenue minus cost.
func (t Totals) Profit() decimal.Decimal {
	return t.Revenue.Sub(t.Cost)
}

// ProfitMargin is profit as a percentage of revenue, 0 without revenue.
func (t Totals) ProfitMargin() float64 {
	if t.Revenue.Sign() <= 0 {
		return 0
	}
	return t.Profit().Div(t.Revenue).Mul(hundred).InexactFloat64()
}

func (t *Totals) add(f Fact, costs map[int64]decimal.Decimal) {
	qty := decimal.NewFromInt(int64(f.Quantity))
	t.Transactions++
	t.ItemsSold += f.Quantity
	t.Revenue = t.Revenue.Add(f.UnitPrice.Mul(qty))
	t.Cost = t.Cost.Add(costs[f.RecipeID].Mul(qty))
}

// Bucket is one period of a report.
type Bucket struct {
	Period string    `json:"period"`
	Start  time.Time `json:"start"`
	Totals
}

// Aggregate groups facts into period buckets in loc. Only buckets with sales are returned,
// ordered by start. Cost uses the recipe costs given.
func Aggregate(facts []Fact, costs map[int64]decimal.Decimal, period Period, loc *time.Location) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	index := make(map[int64]*Bucket)
	for _, f := range facts {
		start := period.Start(f.SoldAt.In(loc))
		b, ok := index[start.Unix()]
		if !ok {
			b = &Bucket{Period: period.Label(start), Start: start}
			index[start.Unix()] = b
		}
		b.add(f, costs)
	}
	out := make([]Bucket, 0, len(index))
	for _, b := range index {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// Summarize totals every fact.
func Summarize(facts []Fact, costs map[int64]decimal.Decimal) Totals {
	var t Totals
	for _, f := range facts {
		t.add(f, costs)
	}
	return t
}

// Dashboard summarizes today, the trailing week and a daily chart of that week.
type Dashboard struct {
	Today Totals   `json:"today"`
	Week  Totals   `json:"week"`
	Chart []Bucket `json:"chart"`
}

// BuildDashboard aggregates facts for the 7 calendar days ending on the day of now, in loc. Days
// without sales appear in the chart with zero totals.
func BuildDashboard(facts []Fact, costs map[int64]decimal.Decimal, now time.Time, loc *time.Location) Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	today := PeriodDay.Start(now.In(loc))
	weekStart := today.AddDate(0, 0, -(dashboardDays - 1))
	end := today.AddDate(0, 0, 1)

	var d Dashboard
	var inWeek []Fact
	for _, f := range facts {
		at := f.SoldAt.In(loc)
		if at.Before(weekStart) || !at.Before(end) {
			continue
		}
		inWeek = append(inWeek, f)
		if !at.Before(today) {
			d.Today.add(f, costs)
		}
	}
	d.Week = Summarize(inWeek, costs)

	byDay := make(map[int64]Bucket)
	for _, b := range Aggregate(inWeek, costs, PeriodDay, loc) {
		byDay[b.Start.Unix()] = b
	}
	d.Chart = make([]Bucket, 0, dashboardDays)
	for day := weekStart; day.Before(end); day = day.AddDate(0, 0, 1) {
		b, ok := byDay[day.Unix()]
		if !ok {
			b = Bucket{Period: PeriodDay.Label(day), Start: day}
		}
		d.Chart = append(d.Chart, b)
	}
	return d
}
