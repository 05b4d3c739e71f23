package patient

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient is a demographic record. It is referenced, never mutated, by the
// visit/prescription/billing workflow, and cannot be deleted while any
// visit or invoice still points at it.
type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientNo   string     `gorm:"column:patient_no;type:varchar(32);uniqueIndex;not null"`
	Name        string     `gorm:"column:name;type:varchar(64);not null"`
	Gender      Gender     `gorm:"column:gender;type:varchar(1);not null"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth"`

	Phone    string  `gorm:"column:phone;type:varchar(32);index"`
	IDNumber *string `gorm:"column:id_number;type:varchar(32);uniqueIndex"`
	Address  string  `gorm:"column:address;type:varchar(255)"`

	EmergencyContact string `gorm:"column:emergency_contact;type:varchar(64)"`
	EmergencyPhone   string `gorm:"column:emergency_phone;type:varchar(32)"`
	BloodType        string `gorm:"column:blood_type;type:varchar(8)"`

	AllergyHistory string `gorm:"column:allergy_history;type:text"`
	MedicalHistory string `gorm:"column:medical_history;type:text"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

type CreatePatientCommand struct {
	Name             string
	Gender           Gender
	DateOfBirth      *time.Time
	Phone            string
	IDNumber         *string
	Address          string
	EmergencyContact string
	EmergencyPhone   string
	BloodType        string
	AllergyHistory   string
	MedicalHistory   string
}

// UpdatePatientCommand carries the self-service profile fields. Identity
// fields (patient_no, id_number) are not updatable here.
type UpdatePatientCommand struct {
	Phone            *string
	Address          *string
	EmergencyContact *string
	EmergencyPhone   *string
}

type ListPatientsQuery struct {
	Search   string // matches name or patient_no
	Page     int
	PageSize int
}

type PagedPatients struct {
	Patients   []*Patient
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
