package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized means the caller has no resolvable role for the
	// operation. It is returned before any entity state is inspected, so a
	// denied caller learns nothing about internal state.
	ErrUnauthorized = errors.New("unauthorized: no resolvable role for this operation")

	// ErrAccountDisabled means the caller resolved to a deactivated staff
	// profile. It takes precedence over any role match.
	ErrAccountDisabled = errors.New("account disabled")
)

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

type AuditEntry struct {
	UserID       uuid.UUID
	UserRole     string
	Action       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Changes      string
}
