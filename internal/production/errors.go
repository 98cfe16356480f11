package production

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

var (
	// ErrRecipeNotFound indicates the recipe to produce does not exist.
	ErrRecipeNotFound = fmt.Errorf("%w: recipe", shared.ErrNotFound)
	// ErrRecordNotFound indicates the production record does not exist.
	ErrRecordNotFound = fmt.Errorf("%w: production record", shared.ErrNotFound)
	// ErrInvalidQuantity indicates a non-positive or non-finite production quantity.
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a positive number", shared.ErrInvalidArgument)
)
