package ingredients

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostPlaces is the number of fractional digits kept for cost_per_unit.
const CostPlaces = 5

// Ingredient is a raw material held in stock.
type Ingredient struct {
	ID           int64
	Name         string
	Quantity     float64
	Unit         string
	MinThreshold float64
	CostPerUnit  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock reports whether stock has fallen to or below the threshold.
func (i Ingredient) IsLowStock() bool {
	return i.Quantity <= i.MinThreshold
}

// CreateInput describes a new ingredient.
type CreateInput struct {
	Name         string
	Quantity     float64
	Unit         string
	MinThreshold float64
	CostPerUnit  decimal.Decimal
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct {
	Name         *string
	Quantity     *float64
	Unit         *string
	MinThreshold *float64
	CostPerUnit  *decimal.Decimal
}

// Apply merges the non-nil fields into ing.
func (in UpdateInput) Apply(ing Ingredient) Ingredient {
	if in.Name != nil {
		ing.Name = *in.Name
	}
	if in.Quantity != nil {
		ing.Quantity = *in.Quantity
	}
	if in.Unit != nil {
		ing.Unit = *in.Unit
	}
	if in.MinThreshold != nil {
		ing.MinThreshold = *in.MinThreshold
	}
	if in.CostPerUnit != nil {
		ing.CostPerUnit = in.CostPerUnit.Round(CostPlaces)
	}
	return ing
}

// changesReports reports whether the update can alter recipe costs or stock derived figures.
func (in UpdateInput) changesReports() bool {
	return in.CostPerUnit != nil || in.Quantity != nil
}
