package production

import "time"

// Record is an immutable production ledger entry.
type Record struct {
	ID         int64
	RecipeID   int64
	RecipeName string
	Quantity   float64
	Notes      string
	ProducedAt time.Time
}

// ProduceInput describes a production run.
type ProduceInput struct {
	RecipeID       int64
	Quantity       float64
	Notes          string
	IdempotencyKey string
}

// LockedRecipe is the recipe row held under lock during a run.
type LockedRecipe struct {
	ID               int64
	Name             string
	PreparedQuantity float64
}

// Filter narrows record listings.
type Filter struct {
	RecipeID int64
	Limit    int
	Offset   int
}

// RecipeTotal aggregates production per recipe.
type RecipeTotal struct {
	RecipeID      int64
	RecipeName    string
	TotalQuantity float64
	Runs          int
}

// DailyTotal aggregates production per calendar day.
type DailyTotal struct {
	Date          string
	Count         int
	TotalQuantity float64
}

// Summary is the production overview.
type Summary struct {
	TopRecipes []RecipeTotal
	Daily      []DailyTotal
}

const (
	defaultLimit = 200
	maxLimit     = 1000
	// summaryTopN is the number of recipes listed in the summary.
	summaryTopN = 5
	// summaryWindow is the daily production history covered by the summary.
	summaryWindow = 30 * 24 * time.Hour
)

func (f Filter) normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
