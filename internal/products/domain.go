package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of fractional digits a price may carry.
const PricePlaces = 2

var hundred = decimal.NewFromInt(100)

// Product is a sellable item built on a recipe. Cost, profit and margin are derived from the
// recipe's current cost on every read.
type Product struct {
	ID               int64
	RecipeID         int64
	RecipeName       string
	PreparedQuantity float64
	Name             string
	Price            decimal.Decimal
	IsActive         bool
	CreatedAt        time.Time
	Cost             decimal.Decimal
}

// Profit is price minus the recipe's current cost.
func (p Product) Profit() decimal.Decimal {
	return p.Price.Sub(p.Cost)
}

// ProfitMargin is the profit as a percentage of price.
func (p Product) ProfitMargin() float64 {
	return Margin(p.Price, p.Cost)
}

// Margin returns (price-cost)/price*100. A zero cost yields 100; a zero price with a positive cost
// yields 0.
func Margin(price, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 100
	}
	if price.Sign() <= 0 {
		return 0
	}
	return price.Sub(cost).Div(price).Mul(hundred).InexactFloat64()
}

// CreateInput describes a new product.
type CreateInput struct {
	RecipeID int64
	Name     string
	Price    decimal.Decimal
	IsActive bool
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	RecipeID *int64
	Name     *string
	Price    *decimal.Decimal
	IsActive *bool
}

// Filter narrows product listings.
type Filter struct {
	Active *bool
}

// Apply merges the non-nil fields into p.
func (in UpdateInput) Apply(p Product) Product {
	if in.RecipeID != nil {
		p.RecipeID = *in.RecipeID
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}
