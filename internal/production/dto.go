package production

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RecordResponse is the wire shape of a production record.
type RecordResponse struct {
	ID         int64     `json:"id"`
	Recipe     int64     `json:"recipe"`
	RecipeName string    `json:"recipe_name"`
	Quantity   float64   `json:"quantity"`
	Notes      string    `json:"notes"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRecordResponse maps a record onto its response.
func NewRecordResponse(rec Record) RecordResponse {
	return RecordResponse{
		ID:         rec.ID,
		Recipe:     rec.RecipeID,
		RecipeName: rec.RecipeName,
		Quantity:   rec.Quantity,
		Notes:      rec.Notes,
		Timestamp:  rec.ProducedAt,
	}
}

type prepareResponse struct {
	Message    string         `json:"message"`
	Production RecordResponse `json:"production"`
}

type summaryResponse struct {
	TopRecipes      []topRecipeResponse `json:"top_recipes"`
	DailyProduction []dailyResponse     `json:"daily_production"`
}

type topRecipeResponse struct {
	Recipe        int64   `json:"recipe"`
	RecipeName    string  `json:"recipe_name"`
	TotalQuantity float64 `json:"total_quantity"`
	Runs          int     `json:"runs"`
}

type dailyResponse struct {
	Date          string  `json:"date"`
	Count         int     `json:"count"`
	TotalQuantity float64 `json:"total_quantity"`
}

func newSummaryResponse(s Summary) summaryResponse {
	out := summaryResponse{
		TopRecipes:      make([]topRecipeResponse, 0, len(s.TopRecipes)),
		DailyProduction: make([]dailyResponse, 0, len(s.Daily)),
	}
	for _, t := range s.TopRecipes {
		out.TopRecipes = append(out.TopRecipes, topRecipeResponse{Recipe: t.RecipeID, RecipeName: t.RecipeName, TotalQuantity: t.TotalQuantity, Runs: t.Runs})
	}
	for _, d := range s.Daily {
		out.DailyProduction = append(out.DailyProduction, dailyResponse{Date: d.Date, Count: d.Count, TotalQuantity: d.TotalQuantity})
	}
	return out
}

type prepareRequest struct {
	Quantity httpx.Number `json:"quantity"`
	Notes    string       `json:"notes" validate:"max=2000"`
}

type createRequest struct {
	Recipe   int64        `json:"recipe" validate:"required,gt=0"`
	Quantity httpx.Number `json:"quantity"`
	Notes    string       `json:"notes" validate:"max=2000"`
}

// quantityOrDefault parses an optional quantity, defaulting to one unit.
func quantityOrDefault(n httpx.Number) (float64, error) {
	if !n.Set {
		return 1, nil
	}
	qty, err := n.Float("quantity")
	if err != nil {
		return 0, fmt.Errorf("%w: quantity must be a number", shared.ErrInvalidArgument)
	}
	return qty, nil
}
