package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/visit"
	"github.com/careops/clinicflow/pkg/clock"
	"github.com/careops/clinicflow/pkg/metrics"
)

type BillingService struct {
	repo      billing.Repository
	visitRepo visit.Repository
	rxRepo    pharmacy.PrescriptionRepository
	gate      *Gate
	auditSvc  *AuditService
	clock     clock.Clock
	collector *metrics.Collector
	log       *zap.Logger
}

func NewBillingService(
	repo billing.Repository,
	visitRepo visit.Repository,
	rxRepo pharmacy.PrescriptionRepository,
	gate *Gate,
	auditSvc *AuditService,
	clk clock.Clock,
	collector *metrics.Collector,
	log *zap.Logger,
) *BillingService {
	return &BillingService{
		repo:      repo,
		visitRepo: visitRepo,
		rxRepo:    rxRepo,
		gate:      gate,
		auditSvc:  auditSvc,
		clock:     clk,
		collector: collector,
		log:       log,
	}
}

// CreateInvoice bills a visit. The total is computed once, here, as the sum
// of quantity × unit_price over the visit's prescription items using the
// prices snapshotted at authoring time; later drug price changes never
// affect it. A visit without a prescription gets a zero-total invoice.
func (s *BillingService) CreateInvoice(ctx context.Context, actor domain.Actor, cmd *billing.CreateInvoiceCommand, ip string) (*billing.Invoice, error) {
	if err := s.gate.Authorize(actor, OpInvoiceCreate); err != nil {
		return nil, err
	}

	v, err := s.visitRepo.GetByID(ctx, cmd.VisitID)
	if err != nil {
		return nil, fmt.Errorf("verifying visit: %w", err)
	}

	total := decimal.Zero
	p, err := s.rxRepo.GetByVisitID(ctx, cmd.VisitID)
	switch {
	case err == nil:
		total = p.Total()
	case errors.Is(err, pharmacy.ErrPrescriptionNotFound):
		// no prescription, zero total
	default:
		return nil, fmt.Errorf("loading prescription: %w", err)
	}

	issuedBy := cmd.IssuedBy
	if issuedBy == nil && actor.Role == domain.RoleFinance {
		id := actor.StaffID
		issuedBy = &id
	}

	inv := &billing.Invoice{
		InvoiceNo:   newBusinessNo("INV", s.clock.Now()),
		VisitID:     cmd.VisitID,
		PatientID:   v.PatientID,
		IssuedBy:    issuedBy,
		TotalAmount: total,
		Status:      billing.StatusUnpaid,
		Notes:       cmd.Notes,
		IssuedAt:    s.clock.Now(),
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	if s.collector != nil {
		s.collector.InvoicesIssuedTotal.Inc()
	}

	s.audit(ctx, actor, "create", inv.ID, ip, "")

	return inv, nil
}

// ApplyPayment records a remittance against an unpaid invoice. Payments
// accumulate: the invoice flips to paid exactly when the running sum
// reaches total_amount, and paid_at is the timestamp of the payment that
// crossed the threshold. Overpayment is accepted and recorded as tendered.
func (s *BillingService) ApplyPayment(ctx context.Context, actor domain.Actor, cmd *billing.ApplyPaymentCommand, ip string) (*billing.Payment, *billing.Invoice, error) {
	if err := s.gate.Authorize(actor, OpPaymentApply); err != nil {
		return nil, nil, err
	}

	if !cmd.Amount.IsPositive() {
		return nil, nil, billing.ErrInvalidAmount
	}
	if !cmd.Method.IsValid() {
		return nil, nil, billing.ErrInvalidMethod
	}

	receivedBy := cmd.ReceivedBy
	if receivedBy == nil && actor.Role == domain.RoleFinance {
		id := actor.StaffID
		receivedBy = &id
	}

	payment := &billing.Payment{
		InvoiceID:  cmd.InvoiceID,
		Amount:     cmd.Amount,
		Method:     cmd.Method,
		ReceivedBy: receivedBy,
		Note:       cmd.Note,
	}

	inv, err := s.repo.ApplyPayment(ctx, cmd.InvoiceID, payment, s.clock.Now())
	if err != nil {
		return nil, nil, err
	}

	if s.collector != nil {
		s.collector.PaymentsTotal.WithLabelValues(string(cmd.Method)).Inc()
	}

	s.audit(ctx, actor, "update", cmd.InvoiceID, ip,
		fmt.Sprintf(`{"action":"payment","amount":%q,"method":%q,"status":%q}`, cmd.Amount.StringFixed(2), cmd.Method, inv.Status))

	return payment, inv, nil
}

// Refund marks a paid invoice refunded. Recording only; no funds move.
func (s *BillingService) Refund(ctx context.Context, actor domain.Actor, invoiceID uuid.UUID, ip string) (*billing.Invoice, error) {
	if err := s.gate.Authorize(actor, OpInvoiceRefund); err != nil {
		return nil, err
	}

	inv, err := s.repo.MarkRefunded(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actor, "update", invoiceID, ip, `{"status":"refunded"}`)

	return inv, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, actor domain.Actor, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsPatient() && actor.PatientID != inv.PatientID {
		return nil, ErrUnauthorized
	}
	return inv, nil
}

func (s *BillingService) ListInvoices(ctx context.Context, actor domain.Actor, q *billing.ListInvoicesQuery) (*billing.PagedInvoices, error) {
	if actor.IsPatient() {
		pid := actor.PatientID
		q.PatientID = &pid
	}
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.ListInvoices(ctx, q)
}

func (s *BillingService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]*billing.Payment, error) {
	return s.repo.ListPayments(ctx, invoiceID)
}

func (s *BillingService) audit(ctx context.Context, actor domain.Actor, action string, id uuid.UUID, ip, changes string) {
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: action, ResourceType: "invoice", ResourceID: id.String(), IPAddress: ip,
		Changes: changes,
	})
}
