// internal/core/domain/errors.go
package domain

import "errors"

// Sentinel errors shared across services, repositories and handlers.
// Repositories translate database conflicts into these so handlers can
// map them to HTTP statuses without string matching.
var (
	// ErrInsufficientStock is returned when a loan or sale asks for more
	// units than an item currently has available.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConsignmentClosed is returned when a conversion or return targets
	// a consignment that already reached a terminal state. Whichever
	// transaction commits first wins; the loser gets this error.
	ErrConsignmentClosed = errors.New("consignment already closed")

	// ErrConsignmentNotFound is returned when the target consignment does
	// not exist.
	ErrConsignmentNotFound = errors.New("consignment not found")

	// ErrEmptySelection is returned when a consignment or sale is created
	// with no items selected.
	ErrEmptySelection = errors.New("at least one item must be selected")

	// ErrClienteRequired is returned when a consignment is created without
	// a client reference.
	ErrClienteRequired = errors.New("cliente is required")

	// ErrQuantityExceedsLoan is returned when a conversion sells more units
	// of a line than were originally loaned.
	ErrQuantityExceedsLoan = errors.New("quantity exceeds loaned amount")

	// ErrItemNotInConsignment is returned when a conversion references an
	// item id that is not part of the consignment.
	ErrItemNotInConsignment = errors.New("item is not part of the consignment")

	// ErrBarterDescriptionRequired is returned when forma_pagamento is
	// Permuta and no barter description was supplied.
	ErrBarterDescriptionRequired = errors.New("barter description is required for Permuta")

	// ErrBarterDiscountNotAllowed is returned when a Permuta sale carries a
	// nonzero discount.
	ErrBarterDiscountNotAllowed = errors.New("discount is not allowed for Permuta")

	// ErrUnknownPaymentMethod is returned for payment methods outside the
	// fixed enumeration.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")

	// ErrPastDeadline is returned when a consignment is created with a
	// return deadline that is not in the future.
	ErrPastDeadline = errors.New("return deadline must be in the future")

	// ErrInvalidPeriod is returned for a history request whose period name
	// or custom window is invalid.
	ErrInvalidPeriod = errors.New("invalid reporting period")

	// ErrNotFound is the generic not-found error for items and clients.
	ErrNotFound = errors.New("record not found")
)
