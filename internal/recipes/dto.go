package recipes

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RequirementResponse is one entry of ingredients_detail.
type RequirementResponse struct {
	ID             int64   `json:"id"`
	Recipe         int64   `json:"recipe"`
	Ingredient     int64   `json:"ingredient"`
	IngredientName string  `json:"ingredient_name"`
	IngredientUnit string  `json:"ingredient_unit"`
	Quantity       float64 `json:"quantity"`
}

// RecipeResponse is the wire shape of a recipe with its derived figures.
type RecipeResponse struct {
	ID                int64                 `json:"id"`
	Name              string                `json:"name"`
	Instructions      string                `json:"instructions"`
	PreparationTime   int                   `json:"preparation_time"`
	PreparedQuantity  float64               `json:"prepared_quantity"`
	Image             *string               `json:"image"`
	CanMake           bool                  `json:"can_make"`
	MaxPortions       float64               `json:"max_portions"`
	Cost              json.Number           `json:"cost"`
	CostPerServing    json.Number           `json:"cost_per_serving"`
	IngredientsDetail []RequirementResponse `json:"ingredients_detail"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// NewRecipeResponse maps a recipe onto its response.
func NewRecipeResponse(rec Recipe) RecipeResponse {
	cost := httpx.Money(rec.Cost(), CostPlaces)
	detail := make([]RequirementResponse, 0, len(rec.Requirements))
	for _, req := range rec.Requirements {
		detail = append(detail, NewRequirementResponse(req))
	}
	return RecipeResponse{
		ID:                rec.ID,
		Name:              rec.Name,
		Instructions:      rec.Instructions,
		PreparationTime:   rec.PreparationTime,
		PreparedQuantity:  rec.PreparedQuantity,
		Image:             rec.Image,
		CanMake:           rec.CanMake(),
		MaxPortions:       rec.MaxPortions(),
		Cost:              cost,
		CostPerServing:    cost,
		IngredientsDetail: detail,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}

// NewRequirementResponse maps a requirement line onto its response.
func NewRequirementResponse(req Requirement) RequirementResponse {
	return RequirementResponse{
		ID:             req.ID,
		Recipe:         req.RecipeID,
		Ingredient:     req.IngredientID,
		IngredientName: req.IngredientName,
		IngredientUnit: req.IngredientUnit,
		Quantity:       req.Quantity,
	}
}

type requirementLine struct {
	Ingredient int64        `json:"ingredient" validate:"required,gt=0"`
	Quantity   httpx.Number `json:"quantity"`
}

func toRequirementInputs(lines []requirementLine) ([]RequirementInput, error) {
	out := make([]RequirementInput, 0, len(lines))
	for _, line := range lines {
		if !line.Quantity.Set {
			return nil, fmt.Errorf("%w: quantity is required", shared.ErrInvalidArgument)
		}
		qty, err := line.Quantity.Float("quantity")
		if err != nil {
			return nil, err
		}
		out = append(out, RequirementInput{IngredientID: line.Ingredient, Quantity: qty})
	}
	return out, nil
}

type createRequest struct {
	Name            string            `json:"name" validate:"required,max=100"`
	Instructions    string            `json:"instructions"`
	PreparationTime int               `json:"preparation_time" validate:"gte=0"`
	Image           *string           `json:"image"`
	Ingredients     []requirementLine `json:"ingredients" validate:"dive"`
}

type updateRequest struct {
	Name            *string            `json:"name" validate:"omitempty,max=100"`
	Instructions    *string            `json:"instructions"`
	PreparationTime *int               `json:"preparation_time" validate:"omitempty,gte=0"`
	Image           *string            `json:"image"`
	Ingredients     *[]requirementLine `json:"ingredients" validate:"omitempty,dive"`
}

func (r updateRequest) toInput() (UpdateInput, error) {
	in := UpdateInput{Name: r.Name, Instructions: r.Instructions, PreparationTime: r.PreparationTime, Image: r.Image}
	if r.Ingredients != nil {
		lines, err := toRequirementInputs(*r.Ingredients)
		if err != nil {
			return UpdateInput{}, err
		}
		in.Requirements = &lines
	}
	return in, nil
}

type setIngredientsRequest struct {
	Ingredients []requirementLine `json:"ingredients" validate:"dive"`
}

type requirementCreateRequest struct {
	Recipe     int64        `json:"recipe" validate:"required,gt=0"`
	Ingredient int64        `json:"ingredient" validate:"required,gt=0"`
	Quantity   httpx.Number `json:"quantity"`
}

type requirementUpdateRequest struct {
	Quantity httpx.Number `json:"quantity"`
}
