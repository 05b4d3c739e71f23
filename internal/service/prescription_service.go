package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/visit"
	"github.com/careops/clinicflow/pkg/clock"
	"github.com/careops/clinicflow/pkg/metrics"
)

type PrescriptionService struct {
	repo      pharmacy.PrescriptionRepository
	drugRepo  pharmacy.DrugRepository
	visitRepo visit.Repository
	gate      *Gate
	auditSvc  *AuditService
	clock     clock.Clock
	collector *metrics.Collector
	log       *zap.Logger
}

func NewPrescriptionService(
	repo pharmacy.PrescriptionRepository,
	drugRepo pharmacy.DrugRepository,
	visitRepo visit.Repository,
	gate *Gate,
	auditSvc *AuditService,
	clk clock.Clock,
	collector *metrics.Collector,
	log *zap.Logger,
) *PrescriptionService {
	return &PrescriptionService{
		repo:      repo,
		drugRepo:  drugRepo,
		visitRepo: visitRepo,
		gate:      gate,
		auditSvc:  auditSvc,
		clock:     clk,
		collector: collector,
		log:       log,
	}
}

// Create starts a draft prescription for an open visit. A visit carries at
// most one prescription.
func (s *PrescriptionService) Create(ctx context.Context, actor domain.Actor, cmd *pharmacy.CreatePrescriptionCommand, ip string) (*pharmacy.Prescription, error) {
	if err := s.gate.Authorize(actor, OpRxCreate); err != nil {
		return nil, err
	}

	v, err := s.visitRepo.GetByID(ctx, cmd.VisitID)
	if err != nil {
		return nil, fmt.Errorf("verifying visit: %w", err)
	}
	if v.Status != visit.StatusOpen {
		return nil, visit.ErrVisitNotOpen
	}

	doctorID := cmd.DoctorID
	if doctorID == nil && actor.Role == domain.RoleDoctor {
		id := actor.StaffID
		doctorID = &id
	}

	p := &pharmacy.Prescription{
		PrescriptionNo: newBusinessNo("RX", s.clock.Now()),
		VisitID:        cmd.VisitID,
		DoctorID:       doctorID,
		Status:         pharmacy.StatusDraft,
		Notes:          cmd.Notes,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.countStatus(pharmacy.StatusDraft)
	s.audit(ctx, actor, "create", p.ID, ip, "")

	return p, nil
}

// AddItem appends a drug line to a draft prescription. The unit price is
// snapshotted from the drug's current sale price.
func (s *PrescriptionService) AddItem(ctx context.Context, actor domain.Actor, cmd *pharmacy.AddItemCommand, ip string) (*pharmacy.PrescriptionItem, error) {
	if err := s.gate.Authorize(actor, OpRxAddItem); err != nil {
		return nil, err
	}

	if cmd.Quantity <= 0 {
		return nil, pharmacy.ErrInvalidQuantity
	}

	p, err := s.repo.GetByID(ctx, cmd.PrescriptionID)
	if err != nil {
		return nil, err
	}
	if p.Status != pharmacy.StatusDraft {
		return nil, pharmacy.ErrInvalidState
	}
	if p.HasDrug(cmd.DrugID) {
		return nil, pharmacy.ErrDuplicateDrug
	}

	d, err := s.drugRepo.GetByID(ctx, cmd.DrugID)
	if err != nil {
		return nil, fmt.Errorf("verifying drug: %w", err)
	}
	if !d.IsActive {
		return nil, pharmacy.ErrDrugInactive
	}

	item := &pharmacy.PrescriptionItem{
		PrescriptionID: cmd.PrescriptionID,
		DrugID:         cmd.DrugID,
		Quantity:       cmd.Quantity,
		UnitPrice:      d.SalePrice,
		Dosage:         cmd.Dosage,
		Notes:          cmd.Notes,
	}

	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, "update", cmd.PrescriptionID, ip,
		fmt.Sprintf(`{"action":"add_item","drug_code":%q,"quantity":%d}`, d.DrugCode, cmd.Quantity))

	return item, nil
}

// Issue moves a draft prescription to issued and stamps issued_at. A
// prescription needs at least one item to be issued.
func (s *PrescriptionService) Issue(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) (*pharmacy.Prescription, error) {
	if err := s.gate.Authorize(actor, OpRxIssue); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := p.Issue(s.clock.Now()); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusFrom(ctx, p, from); err != nil {
		return nil, err
	}

	s.countStatus(pharmacy.StatusIssued)
	s.audit(ctx, actor, "update", id, ip, `{"status":"issued"}`)

	return p, nil
}

// Dispense fulfills an issued prescription from inventory. The deduction
// across all items and the status transition are one atomic unit in the
// repository: on any shortfall nothing is deducted and the prescription
// stays issued.
func (s *PrescriptionService) Dispense(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) (*pharmacy.Prescription, error) {
	if err := s.gate.Authorize(actor, OpRxDispense); err != nil {
		return nil, err
	}

	p, err := s.repo.Dispense(ctx, id, s.clock.Now())
	if err != nil {
		if pharmacy.IsInsufficientStock(err) {
			if s.collector != nil {
				s.collector.DispenseFailures.WithLabelValues("insufficient_stock").Inc()
			}
			s.log.Warn("dispense rejected for insufficient stock",
				zap.String("prescription_id", id.String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.countStatus(pharmacy.StatusDispensed)
	s.audit(ctx, actor, "update", id, ip, `{"status":"dispensed"}`)

	return p, nil
}

// Cancel voids a draft or issued prescription. Cancelling an issued
// prescription restocks nothing, since inventory is only deducted at
// dispense time.
func (s *PrescriptionService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) (*pharmacy.Prescription, error) {
	if err := s.gate.Authorize(actor, OpRxCancel); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := p.Status
	if err := p.Cancel(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatusFrom(ctx, p, from); err != nil {
		return nil, err
	}

	s.countStatus(pharmacy.StatusCancelled)
	s.audit(ctx, actor, "update", id, ip, `{"status":"cancelled"}`)

	return p, nil
}

func (s *PrescriptionService) GetPrescription(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PrescriptionService) GetByVisit(ctx context.Context, visitID uuid.UUID) (*pharmacy.Prescription, error) {
	return s.repo.GetByVisitID(ctx, visitID)
}

func (s *PrescriptionService) List(ctx context.Context, q *pharmacy.ListPrescriptionsQuery) (*pharmacy.PagedPrescriptions, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}

func (s *PrescriptionService) countStatus(status pharmacy.PrescriptionStatus) {
	if s.collector != nil {
		s.collector.PrescriptionsTotal.WithLabelValues(string(status)).Inc()
	}
}

func (s *PrescriptionService) audit(ctx context.Context, actor domain.Actor, action string, id uuid.UUID, ip, changes string) {
	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: action, ResourceType: "prescription", ResourceID: id.String(), IPAddress: ip,
		Changes: changes,
	})
}
