package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careops/clinicflow/internal/domain/billing"
)

type BillingRepository struct {
	db *gorm.DB
}

var _ billing.Repository = (*BillingRepository)(nil)

func NewBillingRepository(db *gorm.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

func (r *BillingRepository) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	if err := r.db.WithContext(ctx).Omit("Payments").Create(inv).Error; err != nil {
		if isUniqueViolation(err) {
			return billing.ErrDuplicateVisit
		}
		return err
	}
	return nil
}

func (r *BillingRepository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := r.db.WithContext(ctx).Preload("Payments").First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *BillingRepository) GetInvoiceByVisitID(ctx context.Context, visitID uuid.UUID) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := r.db.WithContext(ctx).Preload("Payments").Where("visit_id = ?", visitID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ApplyPayment locks the invoice row for the duration of the write, so
// two concurrent payments serialize and each sees the sum the other
// produced. The invoice flips to paid in the same transaction that
// records the crossing payment, with paid_at taken from that payment.
func (r *BillingRepository) ApplyPayment(ctx context.Context, invoiceID uuid.UUID, p *billing.Payment, paidAt time.Time) (*billing.Invoice, error) {
	var result *billing.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv billing.Invoice
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&inv, "id = ?", invoiceID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return billing.ErrInvoiceNotFound
			}
			return err
		}
		if inv.Status != billing.StatusUnpaid {
			return billing.ErrInvalidState
		}

		p.InvoiceID = inv.ID
		p.PaidAt = paidAt
		if err := tx.Create(p).Error; err != nil {
			return err
		}

		var paid decimal.Decimal
		row := tx.Model(&billing.Payment{}).
			Where("invoice_id = ?", inv.ID).
			Select("COALESCE(SUM(amount), 0)").
			Row()
		if err := row.Scan(&paid); err != nil {
			return err
		}

		if paid.GreaterThanOrEqual(inv.TotalAmount) {
			res := tx.Model(&billing.Invoice{}).
				Where("id = ? AND status = ?", inv.ID, billing.StatusUnpaid).
				Updates(map[string]any{
					"status":  billing.StatusPaid,
					"paid_at": paidAt,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return billing.ErrInvalidState
			}
			inv.Status = billing.StatusPaid
			inv.PaidAt = &paidAt
		}

		inv.Payments = append(inv.Payments, p)
		result = &inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *BillingRepository) MarkRefunded(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	res := r.db.WithContext(ctx).Model(&billing.Invoice{}).
		Where("id = ? AND status = ?", id, billing.StatusPaid).
		Update("status", billing.StatusRefunded)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetInvoiceByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, billing.ErrInvalidState
	}
	return r.GetInvoiceByID(ctx, id)
}

func (r *BillingRepository) ListInvoices(ctx context.Context, q *billing.ListInvoicesQuery) (*billing.PagedInvoices, error) {
	query := r.db.WithContext(ctx).Model(&billing.Invoice{})
	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var invoices []*billing.Invoice
	if err := query.Preload("Payments").Order("issued_at DESC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	return &billing.PagedInvoices{
		Invoices:   invoices,
		TotalCount: count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(count, q.PageSize),
	}, nil
}

func (r *BillingRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	var payments []*billing.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
