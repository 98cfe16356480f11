package recipes

import (
	"fmt"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

var (
	// ErrRecipeNotFound indicates the recipe id does not exist.
	ErrRecipeNotFound = fmt.Errorf("%w: recipe", shared.ErrNotFound)
	// ErrRequirementNotFound indicates the recipe ingredient line does not exist.
	ErrRequirementNotFound = fmt.Errorf("%w: recipe ingredient", shared.ErrNotFound)
	// ErrIngredientNotFound indicates a requirement references an unknown ingredient.
	ErrIngredientNotFound = fmt.Errorf("%w: ingredient", shared.ErrNotFound)
	// ErrDuplicateRequirement indicates an ingredient listed twice for one recipe.
	ErrDuplicateRequirement = fmt.Errorf("%w: ingredient already part of recipe", shared.ErrDuplicate)
)
