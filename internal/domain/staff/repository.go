package staff

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new staff profile. Returns ErrStaffAlreadyExists on
	// a duplicate staff number.
	Create(ctx context.Context, s *StaffProfile) error

	// GetByID retrieves a profile by primary key. Returns ErrStaffNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*StaffProfile, error)

	// GetByUserID retrieves the profile linked to an auth user.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*StaffProfile, error)

	// SetActive flips the is_active flag. Deactivated staff are rejected by
	// the authorization gate; the profile itself is never deleted while
	// visits, prescriptions, invoices or payments reference it.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// List returns a paginated, filtered list of staff profiles.
	List(ctx context.Context, q *ListStaffQuery) (*PagedStaff, error)
}
