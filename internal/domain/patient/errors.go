package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPatientAlreadyExists = errors.New("patient with this ID number already exists")
	ErrPatientInUse         = errors.New("patient is referenced by visits or invoices and cannot be deleted")
	ErrInvalidGender        = errors.New("invalid gender value")
	ErrNameRequired         = errors.New("patient name is required")
)
