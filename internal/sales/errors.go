package sales

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

var (
	// ErrSaleNotFound indicates the sale id does not exist.
	ErrSaleNotFound = fmt.Errorf("%w: sale", shared.ErrNotFound)
	// ErrProductNotFound indicates an unknown product.
	ErrProductNotFound = fmt.Errorf("%w: product", shared.ErrNotFound)
	// ErrProductInactive indicates a sale of a product that is no longer offered.
	ErrProductInactive = fmt.Errorf("%w: product is not active", shared.ErrInvalidArgument)
	// ErrInvalidQuantity indicates a quantity below one unit.
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive integer", shared.ErrInvalidArgument)
	// ErrEmptyCheckout indicates a cart without lines.
	ErrEmptyCheckout = fmt.Errorf("%w: items are required", shared.ErrInvalidArgument)
)
