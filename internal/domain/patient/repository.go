package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new patient. Returns ErrPatientAlreadyExists on a
	// duplicate IDNumber.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// GetByPatientNo retrieves a patient by business number.
	GetByPatientNo(ctx context.Context, patientNo string) (*Patient, error)

	// Update applies partial updates to the self-service profile fields.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePatientCommand) (*Patient, error)

	// Delete removes a patient record. Returns ErrPatientInUse when any
	// visit or invoice references the patient; deletion is refused, never
	// cascaded.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns a paginated, filtered list of patients.
	List(ctx context.Context, q *ListPatientsQuery) (*PagedPatients, error)

	// ExistsByIDNumber checks for uniqueness without fetching the full record.
	ExistsByIDNumber(ctx context.Context, idNumber string, excludeID *uuid.UUID) (bool, error)
}
