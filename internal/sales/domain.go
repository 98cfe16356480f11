package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of fractional digits a sale price may carry.
const PricePlaces = 2

const (
	defaultLimit = 200
	maxLimit     = 1000
	// maxCheckoutLines bounds the size of one cart.
	maxCheckoutLines = 100
	// stockTolerance absorbs float error when comparing prepared quantity.
	stockTolerance = 1e-9
)

// Sale is an immutable sales ledger entry. ProductPrice and Cost are the product's current figures,
// used to derive Profit.
type Sale struct {
	ID           int64
	ProductID    int64
	ProductName  string
	RecipeID     int64
	Quantity     int
	UnitPrice    decimal.Decimal
	SoldAt       time.Time
	ProductPrice decimal.Decimal
	Cost         decimal.Decimal
}

// TotalPrice is quantity times unit price.
func (s Sale) TotalPrice() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Profit is the product's current profit times quantity.
func (s Sale) Profit() decimal.Decimal {
	return s.ProductPrice.Sub(s.Cost).Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Line is one product sold within a sale or checkout. A nil UnitPrice defaults to the product price.
type Line struct {
	ProductID int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// SellInput describes a single sale.
type SellInput struct {
	Line
	SoldAt         *time.Time
	IdempotencyKey string
}

// CheckoutInput describes a cart sold in one transaction.
type CheckoutInput struct {
	Lines          []Line
	SoldAt         *time.Time
	IdempotencyKey string
}

// ProductRef is the product row read while selling.
type ProductRef struct {
	ID       int64
	Name     string
	RecipeID int64
	Price    decimal.Decimal
	IsActive bool
}

// LockedRecipe is the recipe row held under lock while selling.
type LockedRecipe struct {
	ID               int64
	Name             string
	PreparedQuantity float64
}

// Filter narrows sale listings. From is inclusive and To exclusive.
type Filter struct {
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
}

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
