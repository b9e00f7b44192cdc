package errors

import "errors"

var (
	ErrRecipeNotFound    = errors.New("recipe not found")
	ErrRecipeConflict    = errors.New("recipe conflict")
	ErrInvalidRecipeData = errors.New("invalid recipe data")

	ErrNotificationNotFound = errors.New("notification not found")

	ErrDatabaseOperation = errors.New("database operation failed")
	ErrInternalServer    = errors.New("internal server error")
)
