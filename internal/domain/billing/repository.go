package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateInvoice persists a new unpaid invoice. Returns ErrDuplicateVisit
	// when the visit already has one.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoiceByID retrieves an invoice with its payments. Returns
	// ErrInvoiceNotFound if missing.
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// GetInvoiceByVisitID retrieves the invoice for a visit, with payments.
	GetInvoiceByVisitID(ctx context.Context, visitID uuid.UUID) (*Invoice, error)

	// ApplyPayment inserts the payment row and re-evaluates the invoice's
	// paid status in a single atomic unit: the invoice row is locked, the
	// payment persisted with paidAt, and when the cumulative paid amount
	// reaches total_amount the invoice flips to paid with paid_at set to
	// paidAt. Returns ErrInvalidState unless the invoice is unpaid.
	ApplyPayment(ctx context.Context, invoiceID uuid.UUID, p *Payment, paidAt time.Time) (*Invoice, error)

	// MarkRefunded executes paid → refunded as a compare-and-swap on status.
	// Returns ErrInvalidState when the invoice is not currently paid.
	MarkRefunded(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// ListInvoices returns a paginated, filtered list of invoices.
	ListInvoices(ctx context.Context, q *ListInvoicesQuery) (*PagedInvoices, error)

	// ListPayments returns the payments recorded against an invoice.
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error)
}
