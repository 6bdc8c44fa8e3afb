package domain

import "errors"

var (
	ErrSubscriptionExpired = errors.New("subscription expired")
)
