package ordersvc

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrInvalidLineItem    = errors.New("invalid line item")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrTransactionFailed  = errors.New("transaction failed")
)

// LineItemError describes the first rejected field of a line item.
type LineItemError struct {
	Index  int
	Field  string
	Reason string
}

func (e *LineItemError) Error() string {
	return fmt.Sprintf("line item %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *LineItemError) Is(target error) bool {
	return target == ErrInvalidLineItem
}

// InsufficientStockError names the product that could not be served.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
