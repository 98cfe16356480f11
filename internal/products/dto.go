package products

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// ProductResponse is the wire shape of a product.
type ProductResponse struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	Recipe           int64       `json:"recipe"`
	RecipeName       string      `json:"recipe_name"`
	Price            json.Number `json:"price"`
	IsActive         bool        `json:"is_active"`
	Cost             json.Number `json:"cost"`
	Profit           json.Number `json:"profit"`
	ProfitMargin     float64     `json:"profit_margin"`
	PreparedQuantity float64     `json:"prepared_quantity"`
	CreatedAt        time.Time   `json:"created_at"`
}

// NewProductResponse maps a product onto its response.
func NewProductResponse(p Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Recipe:           p.RecipeID,
		RecipeName:       p.RecipeName,
		Price:            httpx.Money(p.Price, PricePlaces),
		IsActive:         p.IsActive,
		Cost:             httpx.Money(p.Cost, PricePlaces),
		Profit:           httpx.Money(p.Profit(), PricePlaces),
		ProfitMargin:     p.ProfitMargin(),
		PreparedQuantity: p.PreparedQuantity,
		CreatedAt:        p.CreatedAt,
	}
}

type createRequest struct {
	Recipe   int64        `json:"recipe" validate:"required,gt=0"`
	Name     string       `json:"name" validate:"required,max=100"`
	Price    httpx.Number `json:"price"`
	IsActive *bool        `json:"is_active"`
}

func (r createRequest) toInput() (CreateInput, error) {
	if !r.Price.Set {
		return CreateInput{}, fmt.Errorf("%w: price is required", shared.ErrInvalidArgument)
	}
	price, err := r.Price.Decimal("price")
	if err != nil {
		return CreateInput{}, err
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return CreateInput{RecipeID: r.Recipe, Name: r.Name, Price: price, IsActive: active}, nil
}

type updateRequest struct {
	Recipe   *int64       `json:"recipe" validate:"omitempty,gt=0"`
	Name     *string      `json:"name" validate:"omitempty,max=100"`
	Price    httpx.Number `json:"price"`
	IsActive *bool        `json:"is_active"`
}

func (r updateRequest) toInput() (UpdateInput, error) {
	in := UpdateInput{RecipeID: r.Recipe, Name: r.Name, IsActive: r.IsActive}
	if r.Price.Set {
		price, err := r.Price.Decimal("price")
		if err != nil {
			return UpdateInput{}, err
		}
		in.Price = &price
	}
	return in, nil
}
