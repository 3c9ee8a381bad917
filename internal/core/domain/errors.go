// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for callers that only need identity checks.
var (
	// ErrInvoiceNotFound is returned when a reversal targets an invoice that
	// does not exist or was already reversed.
	ErrInvoiceNotFound = errors.New("purchase invoice not found")

	// ErrEmptyCart is returned when a sale is submitted with no lines.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotAuthorized is returned when the reversal credential check fails.
	ErrNotAuthorized = errors.New("not authorized")
)

// ValidationError reports a malformed or missing request field. It is raised
// before any lock is taken, so no transaction state exists when it surfaces.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ProductNotFoundError identifies the cart or invoice line that referenced a
// product with no ledger row.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a sale line asks for more units
// than the product holds at lock time.
type InsufficientStockError struct {
	ProductID int64
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.Name, e.Requested, e.Available)
}

// ConflictError reports a uniqueness collision, e.g. a new-product invoice
// item whose barcode already exists.
type ConflictError struct {
	Resource string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Value)
}

// InvoiceItemError wraps a validation failure with the position and identity
// of the offending invoice item, so the caller can render it directly.
type InvoiceItemError struct {
	Index int
	Name  string
	Err   error
}

func (e *InvoiceItemError) Error() string {
	return fmt.Sprintf("invoice item %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *InvoiceItemError) Unwrap() error { return e.Err }
