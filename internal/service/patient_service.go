package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/pkg/clock"
)

type PatientService struct {
	repo     patient.Repository
	gate     *Gate
	auditSvc *AuditService
	clock    clock.Clock
	log      *zap.Logger
}

func NewPatientService(repo patient.Repository, gate *Gate, auditSvc *AuditService, clk clock.Clock, log *zap.Logger) *PatientService {
	return &PatientService{repo: repo, gate: gate, auditSvc: auditSvc, clock: clk, log: log}
}

func (s *PatientService) CreatePatient(ctx context.Context, actor domain.Actor, cmd *patient.CreatePatientCommand, ip string) (*patient.Patient, error) {
	if err := s.gate.Authorize(actor, OpPatientCreate); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cmd.Name) == "" {
		return nil, patient.ErrNameRequired
	}
	if !cmd.Gender.IsValid() {
		return nil, patient.ErrInvalidGender
	}

	if cmd.IDNumber != nil && *cmd.IDNumber != "" {
		exists, err := s.repo.ExistsByIDNumber(ctx, *cmd.IDNumber, nil)
		if err != nil {
			s.log.Error("failed to check ID number uniqueness", zap.Error(err))
			return nil, fmt.Errorf("checking uniqueness: %w", err)
		}
		if exists {
			return nil, patient.ErrPatientAlreadyExists
		}
	}

	p := &patient.Patient{
		PatientNo:        newBusinessNo("P", s.clock.Now()),
		Name:             strings.TrimSpace(cmd.Name),
		Gender:           cmd.Gender,
		DateOfBirth:      cmd.DateOfBirth,
		Phone:            strings.TrimSpace(cmd.Phone),
		IDNumber:         cmd.IDNumber,
		Address:          cmd.Address,
		EmergencyContact: cmd.EmergencyContact,
		EmergencyPhone:   cmd.EmergencyPhone,
		BloodType:        cmd.BloodType,
		AllergyHistory:   cmd.AllergyHistory,
		MedicalHistory:   cmd.MedicalHistory,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "create", ResourceType: "patient", ResourceID: p.ID.String(), IPAddress: ip,
	})

	return p, nil
}

// UpdatePatient applies self-service profile updates. A patient actor may
// only update their own record; staff go through the gate.
func (s *PatientService) UpdatePatient(ctx context.Context, actor domain.Actor, id uuid.UUID, cmd *patient.UpdatePatientCommand, ip string) (*patient.Patient, error) {
	if actor.IsPatient() {
		if actor.PatientID != id {
			return nil, ErrUnauthorized
		}
	} else if err := s.gate.Authorize(actor, OpPatientUpdate); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "patient", ResourceID: id.String(), IPAddress: ip,
	})

	return p, nil
}

// DeletePatient removes a record that anchors no history. The repository
// refuses with ErrPatientInUse when any visit or invoice references the
// patient; the refusal is never downgraded to a cascade.
func (s *PatientService) DeletePatient(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) error {
	if err := s.gate.Authorize(actor, OpPatientDelete); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "delete", ResourceType: "patient", ResourceID: id.String(), IPAddress: ip,
	})

	return nil
}

func (s *PatientService) GetPatient(ctx context.Context, actor domain.Actor, id uuid.UUID) (*patient.Patient, error) {
	if actor.IsPatient() && actor.PatientID != id {
		return nil, ErrUnauthorized
	}
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) ListPatients(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}
