package reports

import (
	"encoding/json"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
)

type bucketResponse struct {
	Period       string      `json:"period"`
	Transactions int         `json:"transactions"`
	TotalSales   json.Number `json:"total_sales"`
	ItemsSold    int         `json:"items_sold"`
	Cost         json.Number `json:"cost"`
	Profit       json.Number `json:"profit"`
	ProfitMargin float64     `json:"profit_margin"`
}

type reportResponse struct {
	Data []bucketResponse `json:"data"`
}

func newReportResponse(buckets []Bucket) reportResponse {
	out := reportResponse{Data: make([]bucketResponse, 0, len(buckets))}
	for _, b := range buckets {
		out.Data = append(out.Data, bucketResponse{
			Period:       b.Period,
			Transactions: b.Transactions,
			TotalSales:   httpx.Money(b.Revenue, MoneyPlaces),
			ItemsSold:    b.ItemsSold,
			Cost:         httpx.Money(b.Cost, MoneyPlaces),
			Profit:       httpx.Money(b.Profit(), MoneyPlaces),
			ProfitMargin: b.ProfitMargin(),
		})
	}
	return out
}

type totalsResponse struct {
	Revenue      json.Number `json:"revenue"`
	Cost         json.Number `json:"cost"`
	Profit       json.Number `json:"profit"`
	ProfitMargin float64     `json:"profit_margin"`
	Transactions int         `json:"transactions"`
	ItemsSold    int         `json:"items_sold"`
}

func newTotalsResponse(t Totals) totalsResponse {
	return totalsResponse{
		Revenue:      httpx.Money(t.Revenue, MoneyPlaces),
		Cost:         httpx.Money(t.Cost, MoneyPlaces),
		Profit:       httpx.Money(t.Profit(), MoneyPlaces),
		ProfitMargin: t.ProfitMargin(),
		Transactions: t.Transactions,
		ItemsSold:    t.ItemsSold,
	}
}

type chartPoint struct {
	Period       string      `json:"period"`
	TotalSales   json.Number `json:"total_sales"`
	Transactions int         `json:"transactions"`
	Profit       json.Number `json:"profit"`
}

type dashboardResponse struct {
	Today     totalsResponse `json:"today"`
	Week      totalsResponse `json:"week"`
	ChartData []chartPoint   `json:"chart_data"`
}

func newDashboardResponse(d Dashboard) dashboardResponse {
	out := dashboardResponse{
		Today:     newTotalsResponse(d.Today),
		Week:      newTotalsResponse(d.Week),
		ChartData: make([]chartPoint, 0, len(d.Chart)),
	}
	for _, b := range d.Chart {
		out.ChartData = append(out.ChartData, chartPoint{
			Period:       b.Period,
			TotalSales:   httpx.Money(b.Revenue, MoneyPlaces),
			Transactions: b.Transactions,
			Profit:       httpx.Money(b.Profit(), MoneyPlaces),
		})
	}
	return out
}
