package repositories

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateCheckout = errors.New("an order for this cart version already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUser     = errors.New("user already exists")
)
