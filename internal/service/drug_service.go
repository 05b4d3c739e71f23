package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
)

type DrugService struct {
	repo     pharmacy.DrugRepository
	gate     *Gate
	auditSvc *AuditService
	log      *zap.Logger
}

func NewDrugService(repo pharmacy.DrugRepository, gate *Gate, auditSvc *AuditService, log *zap.Logger) *DrugService {
	return &DrugService{repo: repo, gate: gate, auditSvc: auditSvc, log: log}
}

// CreateDrug registers a drug and its inventory row together.
func (s *DrugService) CreateDrug(ctx context.Context, actor domain.Actor, cmd *pharmacy.CreateDrugCommand, ip string) (*pharmacy.Drug, error) {
	if err := s.gate.Authorize(actor, OpDrugCreate); err != nil {
		return nil, err
	}

	var fields []string
	if cmd.DrugCode == "" {
		fields = append(fields, "drug_code is required")
	}
	if cmd.Name == "" {
		fields = append(fields, "name is required")
	}
	if cmd.PurchasePrice.IsNegative() || cmd.SalePrice.IsNegative() {
		fields = append(fields, "prices must be non-negative")
	}
	if cmd.InitialQuantity < 0 {
		fields = append(fields, "initial quantity must be non-negative")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	warningLevel := cmd.WarningLevel
	if warningLevel <= 0 {
		warningLevel = pharmacy.DefaultWarningLevel
	}

	d := &pharmacy.Drug{
		DrugCode:             cmd.DrugCode,
		Name:                 cmd.Name,
		Category:             cmd.Category,
		Specification:        cmd.Specification,
		Unit:                 cmd.Unit,
		PurchasePrice:        cmd.PurchasePrice,
		SalePrice:            cmd.SalePrice,
		Manufacturer:         cmd.Manufacturer,
		PrescriptionRequired: cmd.PrescriptionRequired,
		Description:          cmd.Description,
		IsActive:             true,
	}
	inv := &pharmacy.Inventory{
		Quantity:     cmd.InitialQuantity,
		WarningLevel: warningLevel,
		Location:     cmd.Location,
	}

	if err := s.repo.Create(ctx, d, inv); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "create", ResourceType: "drug", ResourceID: d.ID.String(), IPAddress: ip,
	})

	return d, nil
}

// UpdateDrug applies partial updates, including deactivation. Drugs are
// deactivated rather than deleted once prescription items reference them.
func (s *DrugService) UpdateDrug(ctx context.Context, actor domain.Actor, id uuid.UUID, cmd *pharmacy.UpdateDrugCommand, ip string) (*pharmacy.Drug, error) {
	if err := s.gate.Authorize(actor, OpDrugUpdate); err != nil {
		return nil, err
	}

	if cmd.PurchasePrice != nil && cmd.PurchasePrice.IsNegative() {
		return nil, &ValidationError{Fields: []string{"purchase_price must be non-negative"}}
	}
	if cmd.SalePrice != nil && cmd.SalePrice.IsNegative() {
		return nil, &ValidationError{Fields: []string{"sale_price must be non-negative"}}
	}

	d, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "drug", ResourceID: id.String(), IPAddress: ip,
	})

	return d, nil
}

func (s *DrugService) GetDrug(ctx context.Context, id uuid.UUID) (*pharmacy.Drug, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DrugService) ListDrugs(ctx context.Context, q *pharmacy.ListDrugsQuery) (*pharmacy.PagedDrugs, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.List(ctx, q)
}
