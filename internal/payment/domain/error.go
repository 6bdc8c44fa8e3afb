package domain

import "errors"

var (
	ErrIntentNotFound = errors.New("payment intent not found")
	ErrProvider       = errors.New("payment provider error")
)
