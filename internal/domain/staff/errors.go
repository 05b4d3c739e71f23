package staff

import "errors"

var (
	ErrStaffNotFound      = errors.New("staff profile not found")
	ErrStaffAlreadyExists = errors.New("staff profile with this staff number already exists")
	ErrStaffInUse         = errors.New("staff profile is referenced by clinical or financial records and cannot be deleted")
	ErrInvalidRole        = errors.New("invalid staff role")
)
