package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/staff"
)

type StaffService struct {
	repo     staff.Repository
	userRepo UserRepository
	gate     *Gate
	auditSvc *AuditService
	log      *zap.Logger
}

func NewStaffService(repo staff.Repository, userRepo UserRepository, gate *Gate, auditSvc *AuditService, log *zap.Logger) *StaffService {
	return &StaffService{repo: repo, userRepo: userRepo, gate: gate, auditSvc: auditSvc, log: log}
}

// CreateStaff registers a staff profile together with its login identity.
// Admin only.
func (s *StaffService) CreateStaff(ctx context.Context, actor domain.Actor, cmd *staff.CreateStaffCommand, ip string) (*staff.StaffProfile, error) {
	if err := s.gate.Authorize(actor, OpStaffCreate); err != nil {
		return nil, err
	}

	if !cmd.Role.IsStaff() {
		return nil, staff.ErrInvalidRole
	}
	var fields []string
	if strings.TrimSpace(cmd.StaffNo) == "" {
		fields = append(fields, "staff_no is required")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		fields = append(fields, "name is required")
	}
	if strings.TrimSpace(cmd.LoginEmail) == "" {
		fields = append(fields, "login email is required")
	}
	if err := validatePasswordStrength(cmd.Password); err != nil {
		fields = append(fields, err.Error())
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(cmd.LoginEmail)),
		PasswordHash: string(hash),
		Role:         cmd.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating login identity: %w", err)
	}

	profile := &staff.StaffProfile{
		UserID:     user.ID,
		StaffNo:    strings.TrimSpace(cmd.StaffNo),
		Name:       strings.TrimSpace(cmd.Name),
		Role:       cmd.Role,
		Department: cmd.Department,
		Position:   cmd.Position,
		Specialty:  cmd.Specialty,
		Phone:      cmd.Phone,
		Email:      cmd.Email,
		HireDate:   cmd.HireDate,
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "create", ResourceType: "staff", ResourceID: profile.ID.String(), IPAddress: ip,
	})

	return profile, nil
}

// SetActive activates or deactivates a staff profile. A deactivated
// profile is rejected by the authorization gate on its next call even if
// its credentials are still valid.
func (s *StaffService) SetActive(ctx context.Context, actor domain.Actor, id uuid.UUID, active bool, ip string) error {
	if err := s.gate.Authorize(actor, OpStaffSetActive); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "staff", ResourceID: id.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"is_active":%t}`, active),
	})

	return nil
}

func (s *StaffService) GetStaff(ctx context.Context, id uuid.UUID) (*staff.StaffProfile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *StaffService) ListStaff(ctx context.Context, q *staff.ListStaffQuery) (*staff.PagedStaff, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}
