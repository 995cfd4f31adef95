package domain

import "errors"

var (
	ErrOutOfStock = errors.New("requested amount is out of stock")
	ErrNotFound   = errors.New("product is not in cart")
	ErrUpstream   = errors.New("inventory lookup failed")
	ErrPersist    = errors.New("cart persistence failed")
	ErrMalformed  = errors.New("malformed cart")
)
