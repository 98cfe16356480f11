package products

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

var (
	// ErrProductNotFound indicates the product id does not exist.
	ErrProductNotFound = fmt.Errorf("%w: product", shared.ErrNotFound)
	// ErrRecipeNotFound indicates the product references an unknown recipe.
	ErrRecipeNotFound = fmt.Errorf("%w: recipe", shared.ErrNotFound)
	// ErrProductHasSales indicates a delete blocked by recorded sales.
	ErrProductHasSales = fmt.Errorf("%w: product has recorded sales", shared.ErrReferenced)
)
