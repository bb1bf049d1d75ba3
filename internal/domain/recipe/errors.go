package recipe

import "errors"

// Domain errors for recipe operations
var (
	ErrNameRequired           = errors.New("recipe name is required")
	ErrNameTooLong            = errors.New("recipe name must not exceed 255 characters")
	ErrOwnerRequired          = errors.New("recipe owner is required")
	ErrIngredientNameRequired = errors.New("recipe ingredient name is required")
	ErrNegativeQuantity       = errors.New("recipe ingredient quantity cannot be negative")
)
