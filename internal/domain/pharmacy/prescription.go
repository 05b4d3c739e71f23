package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State transitions:
//
//	draft → issued → dispensed
//	draft → cancelled
//	issued → cancelled
//
// Nothing leaves dispensed or cancelled. Inventory is deducted at dispense
// time only, so cancelling an issued prescription restocks nothing.
type PrescriptionStatus string

const (
	StatusDraft     PrescriptionStatus = "draft"
	StatusIssued    PrescriptionStatus = "issued"
	StatusDispensed PrescriptionStatus = "dispensed"
	StatusCancelled PrescriptionStatus = "cancelled"
)

type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PrescriptionNo string     `gorm:"column:prescription_no;type:varchar(32);uniqueIndex;not null"`
	VisitID        uuid.UUID  `gorm:"column:visit_id;type:uuid;uniqueIndex;not null"`
	DoctorID       *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`

	Status PrescriptionStatus `gorm:"column:status;type:varchar(16);not null;default:'draft';index"`
	Notes  string             `gorm:"column:notes;type:text"`

	IssuedAt    *time.Time `gorm:"column:issued_at"`
	DispensedAt *time.Time `gorm:"column:dispensed_at"`

	Items []*PrescriptionItem `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
}

func (Prescription) TableName() string {
	return "pharmacy.prescriptions"
}

func (p *Prescription) CanTransitionTo(newStatus PrescriptionStatus) bool {
	allowed := map[PrescriptionStatus][]PrescriptionStatus{
		StatusDraft:     {StatusIssued, StatusCancelled},
		StatusIssued:    {StatusDispensed, StatusCancelled},
		StatusDispensed: {},
		StatusCancelled: {},
	}
	for _, s := range allowed[p.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Issue moves draft → issued. A prescription with no items cannot be issued.
func (p *Prescription) Issue(at time.Time) error {
	if !p.CanTransitionTo(StatusIssued) {
		return ErrInvalidState
	}
	if len(p.Items) == 0 {
		return ErrEmptyPrescription
	}
	p.Status = StatusIssued
	p.IssuedAt = &at
	return nil
}

// MarkDispensed moves issued → dispensed. Inventory deduction happens in the
// same storage transaction; this only flips the in-memory state.
func (p *Prescription) MarkDispensed(at time.Time) error {
	if !p.CanTransitionTo(StatusDispensed) {
		return ErrInvalidState
	}
	p.Status = StatusDispensed
	p.DispensedAt = &at
	return nil
}

func (p *Prescription) Cancel() error {
	if !p.CanTransitionTo(StatusCancelled) {
		return ErrInvalidState
	}
	p.Status = StatusCancelled
	return nil
}

// HasDrug reports whether the drug already appears as an item.
func (p *Prescription) HasDrug(drugID uuid.UUID) bool {
	for _, item := range p.Items {
		if item.DrugID == drugID {
			return true
		}
	}
	return false
}

// StockLines returns the per-drug quantities this prescription needs from
// inventory.
func (p *Prescription) StockLines() []StockLine {
	lines := make([]StockLine, 0, len(p.Items))
	for _, item := range p.Items {
		lines = append(lines, StockLine{DrugID: item.DrugID, Quantity: item.Quantity})
	}
	return lines
}

// Total sums quantity × unit_price over the items, using the prices
// snapshotted when each item was added.
func (p *Prescription) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// PrescriptionItem is one drug line on a prescription. UnitPrice is a
// snapshot of the drug's sale price at the time the item was added, not a
// live reference. Items are unique per (prescription, drug) and cascade
// with their prescription.
type PrescriptionItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PrescriptionID uuid.UUID `gorm:"column:prescription_id;type:uuid;not null;uniqueIndex:idx_prescription_drug"`
	DrugID         uuid.UUID `gorm:"column:drug_id;type:uuid;not null;uniqueIndex:idx_prescription_drug"`

	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null;default:0"`
	Dosage    string          `gorm:"column:dosage;type:varchar(128)"`
	Notes     string          `gorm:"column:notes;type:varchar(255)"`
}

func (PrescriptionItem) TableName() string {
	return "pharmacy.prescription_items"
}

type CreatePrescriptionCommand struct {
	VisitID  uuid.UUID
	DoctorID *uuid.UUID
	Notes    string
}

type AddItemCommand struct {
	PrescriptionID uuid.UUID
	DrugID         uuid.UUID
	Quantity       int
	Dosage         string
	Notes          string
}

type ListPrescriptionsQuery struct {
	Status   *PrescriptionStatus
	DoctorID *uuid.UUID
	Page     int
	PageSize int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
