package ingredients

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

var (
	// ErrIngredientNotFound indicates the ingredient id does not exist.
	ErrIngredientNotFound = fmt.Errorf("%w: ingredient", shared.ErrNotFound)
	// ErrInvalidAmount indicates a non-positive restock amount.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", shared.ErrInvalidArgument)
)
