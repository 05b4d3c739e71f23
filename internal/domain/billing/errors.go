package billing

import "errors"

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrDuplicateVisit  = errors.New("visit already has an invoice")
	ErrInvalidState    = errors.New("operation not allowed in the invoice's current state")
	ErrInvalidAmount   = errors.New("payment amount must be greater than zero")
	ErrInvalidMethod   = errors.New("invalid payment method")
	ErrInvoiceInUse    = errors.New("invoice has payments and cannot be deleted")
)
