package staff

import (
	"time"

	"github.com/google/uuid"

	"github.com/careops/clinicflow/internal/domain"
)

// StaffProfile extends an auth identity with the clinic-side attributes the
// workflow cares about: the business staff number, the role that drives
// authorization, and the active flag that the gate checks before anything
// else.
type StaffProfile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex;not null"`

	StaffNo string      `gorm:"column:staff_no;type:varchar(32);uniqueIndex;not null"`
	Name    string      `gorm:"column:name;type:varchar(64);not null"`
	Role    domain.Role `gorm:"column:role;type:varchar(16);not null;index"`

	Department string `gorm:"column:department;type:varchar(64);default:'General'"`
	Position   string `gorm:"column:position;type:varchar(64)"`
	Specialty  string `gorm:"column:specialty;type:varchar(128)"`

	Phone string `gorm:"column:phone;type:varchar(32)"`
	Email string `gorm:"column:email;type:varchar(255)"`

	HireDate *time.Time `gorm:"column:hire_date"`
	IsActive bool       `gorm:"column:is_active;default:true;index"`
}

func (StaffProfile) TableName() string {
	return "auth.staff_profiles"
}

type CreateStaffCommand struct {
	StaffNo    string
	Name       string
	Role       domain.Role
	Department string
	Position   string
	Specialty  string
	Phone      string
	Email      string
	HireDate   *time.Time

	// Login credentials for the linked auth user
	LoginEmail string
	Password   string
}

type ListStaffQuery struct {
	Role     *domain.Role
	Active   *bool
	Page     int
	PageSize int
}

type PagedStaff struct {
	Staff      []*StaffProfile
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
