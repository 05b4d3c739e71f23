package visit

import "errors"

var (
	ErrVisitNotFound     = errors.New("visit not found")
	ErrInvalidTransition = errors.New("visit status transition is not allowed")
	ErrVisitNotOpen      = errors.New("visit is not open")
	ErrVisitInUse        = errors.New("visit is referenced by a prescription or invoice and cannot be deleted")
)
