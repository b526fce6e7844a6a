package domain

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers malformed or out-of-range request values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyCart is returned when checkout is attempted without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientStock means a conditional stock decrement matched no row.
	// The whole sale is rolled back when any line hits it.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition is returned for return status changes out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrConflict           = errors.New("conflict")
)
