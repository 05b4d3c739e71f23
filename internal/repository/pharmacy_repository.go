package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careops/clinicflow/internal/domain/pharmacy"
)

type DrugRepository struct {
	db *gorm.DB
}

var _ pharmacy.DrugRepository = (*DrugRepository)(nil)

func NewDrugRepository(db *gorm.DB) *DrugRepository {
	return &DrugRepository{db: db}
}

func (r *DrugRepository) Create(ctx context.Context, d *pharmacy.Drug, inv *pharmacy.Inventory) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		inv.DrugID = d.ID
		return tx.Create(inv).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return pharmacy.ErrDrugAlreadyExists
		}
		return err
	}
	return nil
}

func (r *DrugRepository) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Drug, error) {
	var d pharmacy.Drug
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrDrugNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DrugRepository) GetByCode(ctx context.Context, drugCode string) (*pharmacy.Drug, error) {
	var d pharmacy.Drug
	if err := r.db.WithContext(ctx).Where("drug_code = ?", drugCode).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrDrugNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DrugRepository) Update(ctx context.Context, id uuid.UUID, cmd *pharmacy.UpdateDrugCommand) (*pharmacy.Drug, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Category != nil {
		updates["category"] = *cmd.Category
	}
	if cmd.Specification != nil {
		updates["specification"] = *cmd.Specification
	}
	if cmd.Unit != nil {
		updates["unit"] = *cmd.Unit
	}
	if cmd.PurchasePrice != nil {
		updates["purchase_price"] = *cmd.PurchasePrice
	}
	if cmd.SalePrice != nil {
		updates["sale_price"] = *cmd.SalePrice
	}
	if cmd.Manufacturer != nil {
		updates["manufacturer"] = *cmd.Manufacturer
	}
	if cmd.Description != nil {
		updates["description"] = *cmd.Description
	}
	if cmd.IsActive != nil {
		updates["is_active"] = *cmd.IsActive
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&pharmacy.Drug{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, pharmacy.ErrDrugNotFound
		}
	}
	return r.GetByID(ctx, id)
}

func (r *DrugRepository) List(ctx context.Context, q *pharmacy.ListDrugsQuery) (*pharmacy.PagedDrugs, error) {
	query := r.db.WithContext(ctx).Model(&pharmacy.Drug{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("drug_code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	if q.ActiveOnly {
		query = query.Where("is_active = true")
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var drugs []*pharmacy.Drug
	if err := query.Order("drug_code ASC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&drugs).Error; err != nil {
		return nil, err
	}

	return &pharmacy.PagedDrugs{
		Drugs:      drugs,
		TotalCount: count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(count, q.PageSize),
	}, nil
}

type InventoryRepository struct {
	db *gorm.DB
}

var _ pharmacy.InventoryRepository = (*InventoryRepository)(nil)

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetByDrugID(ctx context.Context, drugID uuid.UUID) (*pharmacy.Inventory, error) {
	var inv pharmacy.Inventory
	if err := r.db.WithContext(ctx).Where("drug_id = ?", drugID).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrInventoryNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepository) Restock(ctx context.Context, drugID uuid.UUID, delta int) (*pharmacy.Inventory, error) {
	res := r.db.WithContext(ctx).Model(&pharmacy.Inventory{}).
		Where("drug_id = ?", drugID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pharmacy.ErrInventoryNotFound
	}
	return r.GetByDrugID(ctx, drugID)
}

func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]*pharmacy.InventoryView, error) {
	var views []*pharmacy.InventoryView
	err := r.db.WithContext(ctx).
		Table("pharmacy.inventory AS inv").
		Select("inv.*, d.drug_code AS drug_code, d.name AS drug_name").
		Joins("JOIN pharmacy.drugs d ON d.id = inv.drug_id").
		Where("inv.quantity <= inv.warning_level").
		Where("d.is_active = true").
		Order("inv.quantity ASC").
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

type PrescriptionRepository struct {
	db *gorm.DB
}

var _ pharmacy.PrescriptionRepository = (*PrescriptionRepository)(nil)

func NewPrescriptionRepository(db *gorm.DB) *PrescriptionRepository {
	return &PrescriptionRepository{db: db}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *pharmacy.Prescription) error {
	if err := r.db.WithContext(ctx).Omit("Items").Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return pharmacy.ErrDuplicateVisit
		}
		return err
	}
	return nil
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	var p pharmacy.Prescription
	if err := r.db.WithContext(ctx).Preload("Items").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PrescriptionRepository) GetByVisitID(ctx context.Context, visitID uuid.UUID) (*pharmacy.Prescription, error) {
	var p pharmacy.Prescription
	if err := r.db.WithContext(ctx).Preload("Items").Where("visit_id = ?", visitID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pharmacy.ErrPrescriptionNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PrescriptionRepository) AddItem(ctx context.Context, item *pharmacy.PrescriptionItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return pharmacy.ErrDuplicateDrug
		}
		return err
	}
	return nil
}

func (r *PrescriptionRepository) UpdateStatusFrom(ctx context.Context, p *pharmacy.Prescription, from pharmacy.PrescriptionStatus) error {
	res := r.db.WithContext(ctx).Model(&pharmacy.Prescription{}).
		Where("id = ? AND status = ?", p.ID, from).
		Updates(map[string]any{
			"status":       p.Status,
			"issued_at":    p.IssuedAt,
			"dispensed_at": p.DispensedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pharmacy.ErrInvalidState
	}
	return nil
}

// Dispense runs the whole handover as one transaction: the prescription
// row and every inventory row it touches are locked FOR UPDATE, all
// quantities are checked before any is deducted, and the status flip is
// guarded with WHERE status = 'issued'. Inventory rows are locked in drug
// ID order so two overlapping dispenses cannot deadlock.
func (r *PrescriptionRepository) Dispense(ctx context.Context, id uuid.UUID, dispensedAt time.Time) (*pharmacy.Prescription, error) {
	var result *pharmacy.Prescription

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p pharmacy.Prescription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").
			First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pharmacy.ErrPrescriptionNotFound
			}
			return err
		}
		if p.Status != pharmacy.StatusIssued {
			return pharmacy.ErrInvalidState
		}
		if len(p.Items) == 0 {
			return pharmacy.ErrEmptyPrescription
		}

		lines := p.StockLines()
		sort.Slice(lines, func(i, j int) bool {
			return lines[i].DrugID.String() < lines[j].DrugID.String()
		})

		type lockedRow struct {
			inv  pharmacy.Inventory
			need int
		}
		locked := make([]lockedRow, 0, len(lines))
		for _, line := range lines {
			var inv pharmacy.Inventory
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("drug_id = ?", line.DrugID).
				First(&inv).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pharmacy.ErrInventoryNotFound
				}
				return err
			}
			if inv.Quantity < line.Quantity {
				var d pharmacy.Drug
				code := line.DrugID.String()
				if err := tx.Select("drug_code").First(&d, "id = ?", line.DrugID).Error; err == nil {
					code = d.DrugCode
				}
				return &pharmacy.InsufficientStockError{
					DrugCode:  code,
					Requested: line.Quantity,
					OnHand:    inv.Quantity,
				}
			}
			locked = append(locked, lockedRow{inv: inv, need: line.Quantity})
		}

		for _, row := range locked {
			res := tx.Model(&pharmacy.Inventory{}).
				Where("id = ?", row.inv.ID).
				Update("quantity", gorm.Expr("quantity - ?", row.need))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return pharmacy.ErrInventoryNotFound
			}
		}

		res := tx.Model(&pharmacy.Prescription{}).
			Where("id = ? AND status = ?", p.ID, pharmacy.StatusIssued).
			Updates(map[string]any{
				"status":       pharmacy.StatusDispensed,
				"dispensed_at": dispensedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pharmacy.ErrInvalidState
		}

		p.Status = pharmacy.StatusDispensed
		p.DispensedAt = &dispensedAt
		result = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *pharmacy.ListPrescriptionsQuery) (*pharmacy.PagedPrescriptions, error) {
	query := r.db.WithContext(ctx).Model(&pharmacy.Prescription{})
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}
	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var prescriptions []*pharmacy.Prescription
	if err := query.Preload("Items").Order("created_at DESC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&prescriptions).Error; err != nil {
		return nil, err
	}

	return &pharmacy.PagedPrescriptions{
		Prescriptions: prescriptions,
		TotalCount:    count,
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    totalPages(count, q.PageSize),
	}, nil
}
