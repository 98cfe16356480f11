package recipes

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func req(qty, stock float64, cost string) Requirement {
	return Requirement{Quantity: qty, Stock: stock, CostPerUnit: decimal.RequireFromString(cost)}
}

func TestMaxPortionsUsesScarcestIngredient(t *testing.T) {
	reqs := []Requirement{req(2, 10, "0"), req(3, 9, "0")}
	require.InDelta(t, 3, MaxPortions(reqs), 1e-9)
	require.True(t, CanMake(reqs))
}

func TestMaxPortionsEdgeCases(t *testing.T) {
	require.Zero(t, MaxPortions(nil))
	require.Zero(t, MaxPortions([]Requirement{req(0, 10, "0")}))
	require.Zero(t, MaxPortions([]Requirement{req(2, 10, "0"), req(1, 0, "0")}))
	require.Zero(t, MaxPortions([]Requirement{req(1, -4, "0")}))
}

func TestMaxPortionsNonIncreasingAsStockFalls(t *testing.T) {
	prev := MaxPortions([]Requirement{req(2, 40, "0"), req(0.5, 7, "0")})
	for stock := 40.0; stock >= 0; stock -= 1.5 {
		next := MaxPortions([]Requirement{req(2, stock, "0"), req(0.5, 7, "0")})
		require.LessOrEqual(t, next, prev+1e-12)
		prev = next
	}
}

func TestCanMakeBoundary(t *testing.T) {
	require.True(t, CanMake([]Requirement{req(2, 2, "0")}))
	require.False(t, CanMake([]Requirement{req(2, 1.99, "0")}))
	require.True(t, CanMake(nil))
}

func TestCostSumsRequirements(t *testing.T) {
	reqs := []Requirement{req(200, 0, "0.00250"), req(2, 0, "0.15000"), req(0.5, 0, "1.20000")}
	require.Equal(t, "1.4", Cost(reqs).String())
	require.True(t, Cost(nil).IsZero())
}

func TestUpdateInputClearsImage(t *testing.T) {
	img := "bread.png"
	rec := Recipe{Name: "Bread", Image: &img}
	empty := ""
	require.Nil(t, UpdateInput{Image: &empty}.Apply(rec).Image)
	name := "Rye"
	require.Equal(t, "Rye", UpdateInput{Name: &name}.Apply(rec).Name)
}
