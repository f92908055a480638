package stock

import "errors"

var (
	ErrItemNotFound    = errors.New("stock item not found")
	ErrTodoNotFound    = errors.New("reorder task not found")
	ErrNegativeStock   = errors.New("stock count cannot be negative")
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrTodoNotPending  = errors.New("reorder task is no longer pending")
)
