package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("customer order not found")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrNotArrived        = errors.New("order has not arrived yet")
)
