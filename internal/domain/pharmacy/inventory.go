package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

const DefaultWarningLevel = 10

// Inventory holds the on-hand quantity for exactly one drug. Quantity never
// goes negative; dispensing is the only deduction path and restocking the
// only addition path.
type Inventory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DrugID uuid.UUID `gorm:"column:drug_id;type:uuid;uniqueIndex;not null"`

	Quantity     int    `gorm:"column:quantity;not null;default:0"`
	WarningLevel int    `gorm:"column:warning_level;not null;default:10"`
	Location     string `gorm:"column:location;type:varchar(64)"`
}

func (Inventory) TableName() string {
	return "pharmacy.inventory"
}

// LowStock reports whether the on-hand quantity has reached the warning level.
func (i *Inventory) LowStock() bool {
	return i.Quantity <= i.WarningLevel
}

// StockLine pairs a drug with a quantity for an all-or-nothing deduction.
type StockLine struct {
	DrugID   uuid.UUID
	Quantity int
}

// InventoryView joins an inventory row with its drug for listings.
type InventoryView struct {
	Inventory
	DrugCode string `gorm:"column:drug_code"`
	DrugName string `gorm:"column:drug_name"`
}
