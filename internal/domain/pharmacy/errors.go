package pharmacy

import (
	"errors"
	"fmt"
)

var (
	ErrDrugNotFound         = errors.New("drug not found")
	ErrDrugAlreadyExists    = errors.New("drug with this code already exists")
	ErrDrugInactive         = errors.New("drug is inactive and cannot be prescribed")
	ErrDrugInUse            = errors.New("drug is referenced by prescription items and cannot be deleted")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrDuplicateVisit       = errors.New("visit already has a prescription")
	ErrDuplicateDrug        = errors.New("drug is already on this prescription")
	ErrInvalidState         = errors.New("operation not allowed in the prescription's current state")
	ErrEmptyPrescription    = errors.New("prescription has no items")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInventoryNotFound    = errors.New("inventory record not found")
)

// InsufficientStockError identifies the drug whose on-hand quantity could
// not cover a deduction. A dispense that raises it leaves every inventory
// row untouched.
type InsufficientStockError struct {
	DrugCode  string
	Requested int
	OnHand    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for drug %s: requested %d, on hand %d", e.DrugCode, e.Requested, e.OnHand)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
