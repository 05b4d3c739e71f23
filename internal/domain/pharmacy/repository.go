package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DrugRepository interface {
	// Create persists the drug and its one-to-one inventory row together.
	// Returns ErrDrugAlreadyExists on a duplicate drug code.
	Create(ctx context.Context, d *Drug, inv *Inventory) error

	// GetByID retrieves a drug by primary key. Returns ErrDrugNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Drug, error)

	// GetByCode retrieves a drug by business code.
	GetByCode(ctx context.Context, drugCode string) (*Drug, error)

	// Update applies partial updates to the drug record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateDrugCommand) (*Drug, error)

	// List returns a paginated, filtered list of drugs.
	List(ctx context.Context, q *ListDrugsQuery) (*PagedDrugs, error)
}

type InventoryRepository interface {
	// GetByDrugID retrieves the inventory row for a drug. Returns
	// ErrInventoryNotFound if missing.
	GetByDrugID(ctx context.Context, drugID uuid.UUID) (*Inventory, error)

	// Restock adds delta (> 0) to the on-hand quantity.
	Restock(ctx context.Context, drugID uuid.UUID, delta int) (*Inventory, error)

	// ListLowStock returns inventory rows at or below their warning level.
	ListLowStock(ctx context.Context) ([]*InventoryView, error)
}

type PrescriptionRepository interface {
	// Create persists a new draft prescription. Returns ErrDuplicateVisit
	// when the visit already has one.
	Create(ctx context.Context, p *Prescription) error

	// GetByID retrieves a prescription with its items. Returns
	// ErrPrescriptionNotFound if missing.
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)

	// GetByVisitID retrieves the prescription for a visit, with items.
	GetByVisitID(ctx context.Context, visitID uuid.UUID) (*Prescription, error)

	// AddItem appends an item. Returns ErrDuplicateDrug when the
	// (prescription, drug) pair already exists.
	AddItem(ctx context.Context, item *PrescriptionItem) error

	// UpdateStatusFrom writes the prescription's status and timestamps only
	// if the stored status still equals from, as a single compare-and-swap.
	// Returns ErrInvalidState when the row was concurrently moved out of from.
	UpdateStatusFrom(ctx context.Context, p *Prescription, from PrescriptionStatus) error

	// Dispense executes issued → dispensed and the inventory deduction for
	// every item as one atomic unit: either every drug's quantity is
	// deducted and the status flipped with dispensedAt set, or nothing
	// changes. Deduction is serialized per drug; a shortfall on any item
	// aborts the whole operation with *InsufficientStockError.
	Dispense(ctx context.Context, id uuid.UUID, dispensedAt time.Time) (*Prescription, error)

	// List returns a paginated, filtered list of prescriptions.
	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)
}
