package recipes

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// StockTolerance absorbs float error when comparing stock against requirements.
const StockTolerance = 1e-9

// CostPlaces is the number of fractional digits a recipe cost is rendered with.
const CostPlaces = 5

// Recipe is a named preparation with its running balance of prepared units.
type Recipe struct {
	ID               int64
	Name             string
	Instructions     string
	PreparationTime  int
	PreparedQuantity float64
	Image            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Requirements     []Requirement
}

// Requirement is one ingredient line of a recipe, joined with the ingredient's current stock and cost.
type Requirement struct {
	ID             int64
	RecipeID       int64
	IngredientID   int64
	IngredientName string
	IngredientUnit string
	Quantity       float64
	Stock          float64
	CostPerUnit    decimal.Decimal
}

// RequirementInput is a requested (ingredient, quantity) pair.
type RequirementInput struct {
	IngredientID int64
	Quantity     float64
}

// RecipeInput describes the editable recipe fields.
type RecipeInput struct {
	Name            string
	Instructions    string
	PreparationTime int
	Image           *string
}

// UpdateInput carries a partial update. Nil fields are left unchanged; a non-nil Requirements
// replaces the whole requirement set.
type UpdateInput struct {
	Name            *string
	Instructions    *string
	PreparationTime *int
	Image           *string
	Requirements    *[]RequirementInput
}

// RequirementFilter narrows requirement listings.
type RequirementFilter struct {
	RecipeID int64
}

// CanMake reports whether current stock covers one unit of every requirement.
func CanMake(reqs []Requirement) bool {
	for _, req := range reqs {
		if req.Stock+StockTolerance < req.Quantity {
			return false
		}
	}
	return true
}

// MaxPortions returns how many units current stock can produce. Requirements with a non-positive
// quantity are ignored; ingredients without stock contribute a ratio of zero.
func MaxPortions(reqs []Requirement) float64 {
	best := math.Inf(1)
	for _, req := range reqs {
		if req.Quantity <= 0 {
			continue
		}
		ratio := req.Stock / req.Quantity
		if ratio < best {
			best = ratio
		}
	}
	if math.IsInf(best, 1) || best < 0 {
		return 0
	}
	return best
}

// Cost sums quantity times cost_per_unit over the requirements.
func Cost(reqs []Requirement) decimal.Decimal {
	total := decimal.Zero
	for _, req := range reqs {
		total = total.Add(decimal.NewFromFloat(req.Quantity).Mul(req.CostPerUnit))
	}
	return total
}

// CanMake reports whether the recipe can currently be produced once.
func (r Recipe) CanMake() bool { return CanMake(r.Requirements) }

// MaxPortions reports how many units the recipe can currently be produced.
func (r Recipe) MaxPortions() float64 { return MaxPortions(r.Requirements) }

// Cost reports the ingredient cost of one unit.
func (r Recipe) Cost() decimal.Decimal { return Cost(r.Requirements) }

// Apply merges the non-nil scalar fields into rec.
func (in UpdateInput) Apply(rec Recipe) Recipe {
	if in.Name != nil {
		rec.Name = *in.Name
	}
	if in.Instructions != nil {
		rec.Instructions = *in.Instructions
	}
	if in.PreparationTime != nil {
		rec.PreparationTime = *in.PreparationTime
	}
	if in.Image != nil {
		if *in.Image == "" {
			rec.Image = nil
		} else {
			img := *in.Image
			rec.Image = &img
		}
	}
	return rec
}
