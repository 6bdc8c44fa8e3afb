package domain

import "errors"

var (
	ErrDuplicateNumber     = errors.New("booklet number already in use")
	ErrBookletNotFound     = errors.New("booklet not found")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInvalidRequest      = errors.New("invalid request")
)
