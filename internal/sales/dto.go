package sales

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-bakery/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// SaleResponse is the wire shape of a sale.
type SaleResponse struct {
	ID          int64       `json:"id"`
	Product     int64       `json:"product"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	TotalPrice  json.Number `json:"total_price"`
	Profit      json.Number `json:"profit"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewSaleResponse maps a sale onto its response.
func NewSaleResponse(s Sale) SaleResponse {
	return SaleResponse{
		ID:          s.ID,
		Product:     s.ProductID,
		ProductName: s.ProductName,
		Quantity:    s.Quantity,
		UnitPrice:   httpx.Money(s.UnitPrice, PricePlaces),
		TotalPrice:  httpx.Money(s.TotalPrice(), PricePlaces),
		Profit:      httpx.Money(s.Profit(), PricePlaces),
		Timestamp:   s.SoldAt,
	}
}

type checkoutResponse struct {
	Sales      []SaleResponse `json:"sales"`
	TotalPrice json.Number    `json:"total_price"`
	Profit     json.Number    `json:"profit"`
}

func newCheckoutResponse(items []Sale) checkoutResponse {
	out := checkoutResponse{Sales: make([]SaleResponse, 0, len(items))}
	total, profit := decimal.Zero, decimal.Zero
	for _, s := range items {
		out.Sales = append(out.Sales, NewSaleResponse(s))
		total = total.Add(s.TotalPrice())
		profit = profit.Add(s.Profit())
	}
	out.TotalPrice = httpx.Money(total, PricePlaces)
	out.Profit = httpx.Money(profit, PricePlaces)
	return out
}

type lineRequest struct {
	Product   int64        `json:"product" validate:"required,gt=0"`
	Quantity  httpx.Number `json:"quantity"`
	UnitPrice httpx.Number `json:"unit_price"`
}

func (r lineRequest) toLine() (Line, error) {
	if !r.Quantity.Set {
		return Line{}, fmt.Errorf("%w: quantity is required", shared.ErrInvalidArgument)
	}
	qty, err := r.Quantity.Int("quantity")
	if err != nil {
		return Line{}, err
	}
	line := Line{ProductID: r.Product, Quantity: qty}
	if r.UnitPrice.Set {
		price, err := r.UnitPrice.Decimal("unit_price")
		if err != nil {
			return Line{}, err
		}
		line.UnitPrice = &price
	}
	return line, nil
}

type sellRequest struct {
	lineRequest
	Timestamp *time.Time `json:"timestamp"`
}

type checkoutRequest struct {
	Items     []lineRequest `json:"items" validate:"required,min=1,dive"`
	Timestamp *time.Time    `json:"timestamp"`
}
