package ingredients

import (
	"encoding/json"
	"time"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
)

// IngredientResponse is the wire shape of an ingredient.
type IngredientResponse struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Quantity     float64     `json:"quantity"`
	Unit         string      `json:"unit"`
	MinThreshold float64     `json:"min_threshold"`
	CostPerUnit  json.Number `json:"cost_per_unit"`
	IsLowStock   bool        `json:"is_low_stock"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewIngredientResponse maps an ingredient onto its response.
func NewIngredientResponse(ing Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:           ing.ID,
		Name:         ing.Name,
		Quantity:     ing.Quantity,
		Unit:         ing.Unit,
		MinThreshold: ing.MinThreshold,
		CostPerUnit:  httpx.Money(ing.CostPerUnit, CostPlaces),
		IsLowStock:   ing.IsLowStock(),
		CreatedAt:    ing.CreatedAt,
		UpdatedAt:    ing.UpdatedAt,
	}
}

type createRequest struct {
	Name         string       `json:"name" validate:"required,max=100"`
	Quantity     httpx.Number `json:"quantity"`
	Unit         string       `json:"unit" validate:"required,max=20"`
	MinThreshold httpx.Number `json:"min_threshold"`
	CostPerUnit  httpx.Number `json:"cost_per_unit"`
}

func (r createRequest) toInput() (CreateInput, error) {
	in := CreateInput{Name: r.Name, Unit: r.Unit}
	var err error
	if r.Quantity.Set {
		if in.Quantity, err = r.Quantity.Float("quantity"); err != nil {
			return CreateInput{}, err
		}
	}
	if r.MinThreshold.Set {
		if in.MinThreshold, err = r.MinThreshold.Float("min_threshold"); err != nil {
			return CreateInput{}, err
		}
	}
	if r.CostPerUnit.Set {
		if in.CostPerUnit, err = r.CostPerUnit.Decimal("cost_per_unit"); err != nil {
			return CreateInput{}, err
		}
	}
	return in, nil
}

type updateRequest struct {
	Name         *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Quantity     httpx.Number `json:"quantity"`
	Unit         *string      `json:"unit" validate:"omitempty,min=1,max=20"`
	MinThreshold httpx.Number `json:"min_threshold"`
	CostPerUnit  httpx.Number `json:"cost_per_unit"`
}

func (r updateRequest) toInput() (UpdateInput, error) {
	in := UpdateInput{Name: r.Name, Unit: r.Unit}
	if r.Quantity.Set {
		v, err := r.Quantity.Float("quantity")
		if err != nil {
			return UpdateInput{}, err
		}
		in.Quantity = &v
	}
	if r.MinThreshold.Set {
		v, err := r.MinThreshold.Float("min_threshold")
		if err != nil {
			return UpdateInput{}, err
		}
		in.MinThreshold = &v
	}
	if r.CostPerUnit.Set {
		v, err := r.CostPerUnit.Decimal("cost_per_unit")
		if err != nil {
			return UpdateInput{}, err
		}
		in.CostPerUnit = &v
	}
	return in, nil
}

type restockRequest struct {
	Amount httpx.Number `json:"amount"`
}
