package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State transitions:
//
//	unpaid → paid → refunded
//
// An invoice becomes paid exactly when the cumulative sum of its payments
// reaches total_amount. Refunding is a recording-only transition; no funds
// move through this system.
type InvoiceStatus string

const (
	StatusUnpaid   InvoiceStatus = "unpaid"
	StatusPaid     InvoiceStatus = "paid"
	StatusRefunded InvoiceStatus = "refunded"
)

type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	InvoiceNo string     `gorm:"column:invoice_no;type:varchar(32);uniqueIndex;not null"`
	VisitID   uuid.UUID  `gorm:"column:visit_id;type:uuid;uniqueIndex;not null"`
	PatientID uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	IssuedBy  *uuid.UUID `gorm:"column:issued_by;type:uuid;index"`

	// Computed once at creation from the visit's prescription items,
	// using the snapshotted unit prices. Later drug price changes never
	// touch it.
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null;default:0"`

	Status InvoiceStatus `gorm:"column:status;type:varchar(16);not null;default:'unpaid';index"`
	Notes  string        `gorm:"column:notes;type:text"`

	IssuedAt time.Time  `gorm:"column:issued_at;not null"`
	PaidAt   *time.Time `gorm:"column:paid_at"`

	Payments []*Payment `gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string {
	return "finance.invoices"
}

// PaidTotal sums the amounts of the loaded payments.
func (inv *Invoice) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Outstanding is total_amount minus the paid total, floored at zero.
func (inv *Invoice) Outstanding() decimal.Decimal {
	out := inv.TotalAmount.Sub(inv.PaidTotal())
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

func (inv *Invoice) Refund() error {
	if inv.Status != StatusPaid {
		return ErrInvalidState
	}
	inv.Status = StatusRefunded
	return nil
}

type PaymentMethod string

const (
	MethodWeChat     PaymentMethod = "wechat"
	MethodAlipay     PaymentMethod = "alipay"
	MethodUnionPay   PaymentMethod = "unionpay"
	MethodVisa       PaymentMethod = "visa"
	MethodMastercard PaymentMethod = "mastercard"
	MethodCash       PaymentMethod = "cash"
	MethodCard       PaymentMethod = "card"
	MethodInsurance  PaymentMethod = "insurance"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodWeChat, MethodAlipay, MethodUnionPay, MethodVisa,
		MethodMastercard, MethodCash, MethodCard, MethodInsurance:
		return true
	}
	return false
}

// Payment is one recorded remittance against an invoice. Rows are immutable
// after creation; split and installment payments are just multiple rows.
type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	InvoiceID uuid.UUID `gorm:"column:invoice_id;type:uuid;not null;index"`

	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null"`
	Method     PaymentMethod   `gorm:"column:method;type:varchar(16);not null;default:'cash'"`
	ReceivedBy *uuid.UUID      `gorm:"column:received_by;type:uuid;index"`

	PaidAt time.Time `gorm:"column:paid_at;not null;index"`
	Note   string    `gorm:"column:note;type:varchar(255)"`
}

func (Payment) TableName() string {
	return "finance.payments"
}

type CreateInvoiceCommand struct {
	VisitID  uuid.UUID
	IssuedBy *uuid.UUID
	Notes    string
}

type ApplyPaymentCommand struct {
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     PaymentMethod
	ReceivedBy *uuid.UUID
	Note       string
}

type ListInvoicesQuery struct {
	PatientID *uuid.UUID
	Status    *InvoiceStatus
	Page      int
	PageSize  int
}

type PagedInvoices struct {
	Invoices   []*Invoice
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
