package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrCartFull     = errors.New("cart is full")
	ErrInvalidInput = errors.New("invalid input")
	ErrPastTime     = fmt.Errorf("%w: time is in the past", ErrInvalidInput)
	ErrSingleOption = errors.New("only one option available")
	ErrStorage      = errors.New("storage failure")
	ErrWrongStep    = errors.New("unexpected input for current step")
)

// Storage wraps a persistence error so callers can match ErrStorage.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
