package orders

import "errors"

var (
	// ErrOrderNotFound means the referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")
	// ErrNotOwner means the caller does not own the order.
	ErrNotOwner = errors.New("order does not belong to this user")
)
