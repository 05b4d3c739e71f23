package visit

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new visit in open state.
	Create(ctx context.Context, v *Visit) error

	// GetByID retrieves a visit by primary key. Returns ErrVisitNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)

	// GetByVisitNo retrieves a visit by business number.
	GetByVisitNo(ctx context.Context, visitNo string) (*Visit, error)

	// UpdateStatusFrom writes the new status only if the stored status still
	// equals from, as a single compare-and-swap. Returns ErrInvalidTransition
	// when the row was concurrently moved out of from.
	UpdateStatusFrom(ctx context.Context, v *Visit, from Status) error

	// AssignDoctor sets the doctor on an open visit.
	AssignDoctor(ctx context.Context, id uuid.UUID, doctorID uuid.UUID) error

	// List returns a paginated, filtered list of visits.
	List(ctx context.Context, q *ListVisitsQuery) (*PagedVisits, error)
}
