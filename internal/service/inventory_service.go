package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/pkg/metrics"
)

// InventoryService covers the pharmacy's stock-keeping operations outside
// dispensing: restocking and low-stock monitoring. Dispensing itself
// deducts stock through the prescription repository so the deduction and
// the status transition share one transaction.
type InventoryService struct {
	repo      pharmacy.InventoryRepository
	drugRepo  pharmacy.DrugRepository
	gate      *Gate
	auditSvc  *AuditService
	collector *metrics.Collector
	log       *zap.Logger
}

func NewInventoryService(
	repo pharmacy.InventoryRepository,
	drugRepo pharmacy.DrugRepository,
	gate *Gate,
	auditSvc *AuditService,
	collector *metrics.Collector,
	log *zap.Logger,
) *InventoryService {
	return &InventoryService{
		repo:      repo,
		drugRepo:  drugRepo,
		gate:      gate,
		auditSvc:  auditSvc,
		collector: collector,
		log:       log,
	}
}

// Restock adds stock for a drug. Delta must be positive; the only
// deduction path is dispensing.
func (s *InventoryService) Restock(ctx context.Context, actor domain.Actor, drugID uuid.UUID, delta int, ip string) (*pharmacy.Inventory, error) {
	if err := s.gate.Authorize(actor, OpInventoryRestock); err != nil {
		return nil, err
	}

	if delta <= 0 {
		return nil, pharmacy.ErrInvalidQuantity
	}

	if _, err := s.drugRepo.GetByID(ctx, drugID); err != nil {
		return nil, fmt.Errorf("verifying drug: %w", err)
	}

	inv, err := s.repo.Restock(ctx, drugID, delta)
	if err != nil {
		return nil, fmt.Errorf("restocking: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: actor.UserID, UserRole: string(actor.Role),
		Action: "update", ResourceType: "inventory", ResourceID: drugID.String(), IPAddress: ip,
		Changes: fmt.Sprintf(`{"action":"restock","delta":%d,"quantity":%d}`, delta, inv.Quantity),
	})

	return inv, nil
}

// LowStock reports whether a drug's on-hand quantity has reached its
// warning level.
func (s *InventoryService) LowStock(ctx context.Context, drugID uuid.UUID) (bool, error) {
	inv, err := s.repo.GetByDrugID(ctx, drugID)
	if err != nil {
		return false, err
	}
	return inv.LowStock(), nil
}

// ListLowStock returns every drug at or below its warning level and
// refreshes the low-stock gauge.
func (s *InventoryService) ListLowStock(ctx context.Context) ([]*pharmacy.InventoryView, error) {
	views, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	if s.collector != nil {
		s.collector.LowStockDrugs.Set(float64(len(views)))
	}
	return views, nil
}

func (s *InventoryService) GetByDrug(ctx context.Context, drugID uuid.UUID) (*pharmacy.Inventory, error) {
	return s.repo.GetByDrugID(ctx, drugID)
}
