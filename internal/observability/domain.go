package observability

import "github.com/prometheus/client_golang/prometheus"

// domain holds the bakery business counters.
type domain struct {
	producedUnits *prometheus.CounterVec
	soldUnits     *prometheus.CounterVec
	revenue       prometheus.Counter
}

func newDomain(registerer prometheus.Registerer) domain {
	d := domain{
		producedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakery_production_units_total",
			Help: "Units produced partitioned by recipe.",
		}, []string{"recipe"}),
		soldUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bakery_sales_units_total",
			Help: "Units sold partitioned by product.",
		}, []string{"product"}),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bakery_sales_revenue_total",
			Help: "Sales revenue in currency units.",
		}),
	}
	registerer.MustRegister(d.producedUnits, d.soldUnits, d.revenue)
	return d
}

// ObserveProduction counts a production run.
func (m *Metrics) ObserveProduction(recipe string, quantity float64) {
	if m == nil || quantity <= 0 {
		return
	}
	m.producedUnits.WithLabelValues(recipe).Add(quantity)
}

// ObserveSale counts a recorded sale.
func (m *Metrics) ObserveSale(product string, units int, revenue float64) {
	if m == nil || units <= 0 {
		return
	}
	m.soldUnits.WithLabelValues(product).Add(float64(units))
	if revenue > 0 {
		m.revenue.Add(revenue)
	}
}
