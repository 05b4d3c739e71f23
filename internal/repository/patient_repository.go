package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/visit"
)

type PatientRepository struct {
	db *gorm.DB
}

var _ patient.Repository = (*PatientRepository)(nil)

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return patient.ErrPatientAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) GetByPatientNo(ctx context.Context, patientNo string) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).Where("patient_no = ?", patientNo).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, id uuid.UUID, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	updates := map[string]any{}
	if cmd.Phone != nil {
		updates["phone"] = *cmd.Phone
	}
	if cmd.Address != nil {
		updates["address"] = *cmd.Address
	}
	if cmd.EmergencyContact != nil {
		updates["emergency_contact"] = *cmd.EmergencyContact
	}
	if cmd.EmergencyPhone != nil {
		updates["emergency_phone"] = *cmd.EmergencyPhone
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete refuses when anything in the clinical or financial schemas still
// references the patient. The existence checks and the delete share one
// transaction so a concurrently opened visit cannot slip through.
func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var visits int64
		if err := tx.Model(&visit.Visit{}).Where("patient_id = ?", id).Count(&visits).Error; err != nil {
			return err
		}
		if visits > 0 {
			return patient.ErrPatientInUse
		}
		var invoices int64
		if err := tx.Model(&billing.Invoice{}).Where("patient_id = ?", id).Count(&invoices).Error; err != nil {
			return err
		}
		if invoices > 0 {
			return patient.ErrPatientInUse
		}

		res := tx.Delete(&patient.Patient{}, "id = ?", id)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return patient.ErrPatientInUse
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return patient.ErrPatientNotFound
		}
		return nil
	})
}

func (r *PatientRepository) List(ctx context.Context, q *patient.ListPatientsQuery) (*patient.PagedPatients, error) {
	query := r.db.WithContext(ctx).Model(&patient.Patient{})
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		query = query.Where("name ILIKE ? OR patient_no ILIKE ?", pattern, pattern)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var patients []*patient.Patient
	if err := query.Order("created_at DESC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&patients).Error; err != nil {
		return nil, err
	}

	return &patient.PagedPatients{
		Patients:   patients,
		TotalCount: count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(count, q.PageSize),
	}, nil
}

func (r *PatientRepository) ExistsByIDNumber(ctx context.Context, idNumber string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id_number = ?", idNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
