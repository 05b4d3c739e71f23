package pharmacy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Drug is pricing reference data. Prices are fixed-point with two decimals;
// prescription items snapshot SalePrice at authoring time, so changing a
// drug's price never rewrites historical invoices.
type Drug struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DrugCode      string `gorm:"column:drug_code;type:varchar(32);uniqueIndex;not null"`
	Name          string `gorm:"column:name;type:varchar(128);not null"`
	Category      string `gorm:"column:category;type:varchar(64)"`
	Specification string `gorm:"column:specification;type:varchar(128)"`
	Unit          string `gorm:"column:unit;type:varchar(32)"`

	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;type:decimal(12,2);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"column:sale_price;type:decimal(12,2);not null;default:0"`

	Manufacturer         string `gorm:"column:manufacturer;type:varchar(128)"`
	PrescriptionRequired bool   `gorm:"column:prescription_required;default:false"`
	Description          string `gorm:"column:description;type:text"`
	IsActive             bool   `gorm:"column:is_active;default:true;index"`
}

func (Drug) TableName() string {
	return "pharmacy.drugs"
}

type CreateDrugCommand struct {
	DrugCode             string
	Name                 string
	Category             string
	Specification        string
	Unit                 string
	PurchasePrice        decimal.Decimal
	SalePrice            decimal.Decimal
	Manufacturer         string
	PrescriptionRequired bool
	Description          string

	// Initial stock for the one-to-one inventory row
	InitialQuantity int
	WarningLevel    int
	Location        string
}

type UpdateDrugCommand struct {
	Name          *string
	Category      *string
	Specification *string
	Unit          *string
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	Manufacturer  *string
	Description   *string
	IsActive      *bool
}

type ListDrugsQuery struct {
	Search     string // matches drug_code or name
	ActiveOnly bool
	Page       int
	PageSize   int
}

type PagedDrugs struct {
	Drugs      []*Drug
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
