package visit

import (
	"time"

	"github.com/google/uuid"
)

// State transitions:
//
//	open → closed
//	open → cancelled
//
// Both closed and cancelled are terminal.
type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// Visit is one clinical encounter. It anchors at most one prescription and
// at most one invoice, and cannot be deleted while either exists.
type Visit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	VisitNo   string     `gorm:"column:visit_no;type:varchar(32);uniqueIndex;not null"`
	PatientID uuid.UUID  `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  *uuid.UUID `gorm:"column:doctor_id;type:uuid;index"`

	Department string    `gorm:"column:department;type:varchar(64)"`
	VisitTime  time.Time `gorm:"column:visit_time;not null;index"`

	ChiefComplaint string `gorm:"column:chief_complaint;type:text"`
	Diagnosis      string `gorm:"column:diagnosis;type:text"`
	Notes          string `gorm:"column:notes;type:text"`

	Status        Status     `gorm:"column:status;type:varchar(16);not null;default:'open';index"`
	NextVisitDate *time.Time `gorm:"column:next_visit_date"`
}

func (Visit) TableName() string {
	return "clinical.visits"
}

func (v *Visit) CanTransitionTo(newStatus Status) bool {
	allowed := map[Status][]Status{
		StatusOpen:      {StatusClosed, StatusCancelled},
		StatusClosed:    {},
		StatusCancelled: {},
	}
	for _, s := range allowed[v.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// Close ends an open encounter. Diagnosis and next-visit suggestions are
// recorded at close time.
func (v *Visit) Close(diagnosis string, nextVisit *time.Time) error {
	if !v.CanTransitionTo(StatusClosed) {
		return ErrInvalidTransition
	}
	v.Status = StatusClosed
	if diagnosis != "" {
		v.Diagnosis = diagnosis
	}
	v.NextVisitDate = nextVisit
	return nil
}

func (v *Visit) Cancel() error {
	if !v.CanTransitionTo(StatusCancelled) {
		return ErrInvalidTransition
	}
	v.Status = StatusCancelled
	return nil
}

type OpenVisitCommand struct {
	PatientID      uuid.UUID
	DoctorID       *uuid.UUID
	Department     string
	VisitTime      time.Time
	ChiefComplaint string
	Notes          string
}

type ListVisitsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Status    *Status
	Page      int
	PageSize  int
}

type PagedVisits struct {
	Visits     []*Visit
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}
