package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/staff"
	"github.com/careops/clinicflow/internal/domain/visit"
	"github.com/careops/clinicflow/pkg/clock"
	"github.com/careops/clinicflow/pkg/metrics"
)

type VisitService struct {
	repo        visit.Repository
	patientRepo patient.Repository
	staffRepo   staff.Repository
	gate        *Gate
	auditSvc    *AuditService
	clock       clock.Clock
	collector   *metrics.Collector
	log         *zap.Logger
}

func NewVisitService(
	repo visit.Repository,
	patientRepo patient.Repository,
	staffRepo staff.Repository,
	gate *Gate,
	auditSvc *AuditService,
	clk clock.Clock,
	collector *metrics.Collector,
	log *zap.Logger,
) *VisitService {
	return &VisitService{
		repo:        repo,
		patientRepo: patientRepo,
		staffRepo:   staffRepo,
		gate:        gate,
		auditSvc:    auditSvc,
		clock:       clk,
		collector:   collector,
		log:         log,
	}
}

// Open starts a clinical encounter. The doctor is optional at creation and
// may be assigned later while the visit is open.
func (s *VisitService) Open(ctx context.Context, actor domain.Actor, cmd *visit.OpenVisitCommand, ip string) (*visit.Visit, error) {
	if err := s.gate.Authorize(actor, OpVisitOpen); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, fmt.Errorf("verifying patient: %w", err)
	}

	if cmd.DoctorID != nil {
		if err := s.verifyDoctor(ctx, *cmd.DoctorID); err != nil {
			return nil, err
		}
	}

	visitTime := cmd.VisitTime
	if visitTime.IsZero() {
		visitTime = s.clock.Now()
	}

	v := &visit.Visit{
		VisitNo:        newBusinessNo("V", s.clock.Now()),
		PatientID:      cmd.PatientID,
		DoctorID:       cmd.DoctorID,
		Department:     cmd.Department,
		VisitTime:      visitTime,
		ChiefComplaint: cmd.ChiefComplaint,
		Notes:          cmd.Notes,
		Status:         visit.StatusOpen,
	}

	if err := s.repo.Create(ctx, v); err != nil {
		s.log.Error("failed to create visit", zap.Error(err))
		return nil, fmt.Errorf("creating visit: %w", err)
	}

	if s.collector != nil {
		s.collector.VisitsOpenedTotal.Inc()
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "create", ResourceType: "visit", ResourceID: v.ID.String(), IPAddress: ip,
	})

	return v, nil
}

// AssignDoctor sets the doctor on an open visit.
func (s *VisitService) AssignDoctor(ctx context.Context, actor domain.Actor, visitID, doctorID uuid.UUID, ip string) (*visit.Visit, error) {
	if err := s.gate.Authorize(actor, OpVisitAssignDoctor); err != nil {
		return nil, err
	}

	v, err := s.repo.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if v.Status != visit.StatusOpen {
		return nil, visit.ErrVisitNotOpen
	}

	if err := s.verifyDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	if err := s.repo.AssignDoctor(ctx, visitID, doctorID); err != nil {
		return nil, fmt.Errorf("assigning doctor: %w", err)
	}
	v.DoctorID = &doctorID

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "visit", ResourceID: visitID.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"doctor_id":%q}`, doctorID),
	})

	return v, nil
}

// Close ends an open visit. Closed is terminal.
func (s *VisitService) Close(ctx context.Context, actor domain.Actor, visitID uuid.UUID, diagnosis string, nextVisit *time.Time, ip string) (*visit.Visit, error) {
	if err := s.gate.Authorize(actor, OpVisitClose); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, visitID, ip, func(v *visit.Visit) error {
		return v.Close(diagnosis, nextVisit)
	})
}

// Cancel voids an open visit. Cancelled is terminal.
func (s *VisitService) Cancel(ctx context.Context, actor domain.Actor, visitID uuid.UUID, ip string) (*visit.Visit, error) {
	if err := s.gate.Authorize(actor, OpVisitCancel); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, visitID, ip, func(v *visit.Visit) error {
		return v.Cancel()
	})
}

func (s *VisitService) transition(ctx context.Context, actor domain.Actor, visitID uuid.UUID, ip string, apply func(*visit.Visit) error) (*visit.Visit, error) {
	v, err := s.repo.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}

	from := v.Status
	if err := apply(v); err != nil {
		return nil, err
	}

	// Compare-and-swap on the previous status so a concurrent transition
	// cannot be silently overwritten.
	if err := s.repo.UpdateStatusFrom(ctx, v, from); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "visit", ResourceID: visitID.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"status":%q}`, v.Status),
	})

	return v, nil
}

func (s *VisitService) GetVisit(ctx context.Context, actor domain.Actor, id uuid.UUID) (*visit.Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Patients can only read their own visits
	if actor.IsPatient() && actor.PatientID != v.PatientID {
		return nil, ErrUnauthorized
	}
	return v, nil
}

func (s *VisitService) ListVisits(ctx context.Context, actor domain.Actor, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
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
	return s.repo.List(ctx, q)
}

func (s *VisitService) verifyDoctor(ctx context.Context, doctorID uuid.UUID) error {
	profile, err := s.staffRepo.GetByID(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("verifying doctor: %w", err)
	}
	if profile.Role != domain.RoleDoctor {
		return staff.ErrInvalidRole
	}
	return nil
}
