package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/careops/clinicflow/internal/domain/staff"
)

type StaffRepository struct {
	db *gorm.DB
}

var _ staff.Repository = (*StaffRepository)(nil)

func NewStaffRepository(db *gorm.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, s *staff.StaffProfile) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return staff.ErrStaffAlreadyExists
		}
		return err
	}
	return nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*staff.StaffProfile, error) {
	var s staff.StaffProfile
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staff.ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*staff.StaffProfile, error) {
	var s staff.StaffProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, staff.ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StaffRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&staff.StaffProfile{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return staff.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) List(ctx context.Context, q *staff.ListStaffQuery) (*staff.PagedStaff, error) {
	query := r.db.WithContext(ctx).Model(&staff.StaffProfile{})
	if q.Role != nil {
		query = query.Where("role = ?", *q.Role)
	}
	if q.Active != nil {
		query = query.Where("is_active = ?", *q.Active)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var profiles []*staff.StaffProfile
	if err := query.Order("staff_no ASC").
		Offset(offset(q.Page, q.PageSize)).Limit(q.PageSize).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	return &staff.PagedStaff{
		Staff:      profiles,
		TotalCount: count,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(count, q.PageSize),
	}, nil
}
