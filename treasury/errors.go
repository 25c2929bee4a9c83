package treasury

import "errors"

var (
	ErrUnauthorized       = errors.New("treasury: unauthorized")
	ErrInvalidFee         = errors.New("treasury: dev and burn fee rates must sum below 100%")
	ErrArithmeticOverflow = errors.New("treasury: fee arithmetic overflow")
	ErrRegistryFull       = errors.New("treasury: admin registry full")
	ErrDuplicateAdmin     = errors.New("treasury: admin already registered")
	ErrNotFound           = errors.New("treasury: admin not found")
)
