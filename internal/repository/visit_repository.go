package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/clinicflow/internal/domain/visit"
)

type VisitRepository struct {
	db *gorm.DB
}

var _ visit.Repository = (*VisitRepository)(nil)

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Create(ctx context.Context, v *visit.Visit) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *VisitRepository) GetByID(ctx context.Context, id uuid.UUID) (*visit.Visit, error) {
	var v visit.Visit
	if err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visit.ErrVisitNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VisitRepository) GetByVisitNo(ctx context.Context, visitNo string) (*visit.Visit, error) {
	var v visit.Visit
	if err := r.db.WithContext(ctx).Where("visit_no = ?", visitNo).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, visit.ErrVisitNotFound
		}
		return nil, err
	}
	return &v, nil
}

// UpdateStatusFrom writes the already-transitioned visit back with a
// WHERE status = from guard. Zero rows affected means another request
// moved the visit first, so the transition is rejected rather than
// silently overwriting a terminal state.
func (r *VisitRepository) UpdateStatusFrom(ctx context.Context, v *visit.Visit, from visit.Status) error {
	res := r.db.WithContext(ctx).Model(&visit.Visit{}).
		Where("id = ? AND status = ?", v.ID, from).
		Updates(map[string]any{
			"status":          v.Status,
			"diagnosis":       v.Diagnosis,
			"notes":           v.Notes,
			"next_visit_date": v.NextVisitDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visit.ErrInvalidTransition
	}
	return nil
}

func (r *VisitRepository) AssignDoctor(ctx context.Context, id uuid.UUID, doctorID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&visit.Visit{}).
		Where("id = ? AND status = ?", id, visit.StatusOpen).
		Update("doctor_id", doctorID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return visit.ErrVisitNotOpen
	}
	return nil
}

func (r *VisitRepository) List(ctx context.Context, q *visit.ListVisitsQuery) (*visit.PagedVisits, error) {
	query := r.db.WithContext(ctx).Model(&visit.Visit{})
	if q.PatientID != nil {
		query = query.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		query = query.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var visits []*visit.Visit
	if err := query.Order("visit_time DESC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&visits).Error; err != nil {
		return nil, err
	}

	return &visit.PagedVisits{
		Visits:     visits,
		TotalCount: count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(count, q.PageSize),
	}, nil
}
