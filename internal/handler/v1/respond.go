// Package v1 exposes the workflow over HTTP. Handlers bind and validate
// request shapes, resolve the caller into an actor, and translate domain
// errors into status codes; every rule lives in the service layer.
package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/staff"
	"github.com/careops/clinicflow/internal/domain/visit"
	"github.com/careops/clinicflow/internal/service"
	"github.com/careops/clinicflow/pkg/auth"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// respondError maps a domain error onto an HTTP status. Unknown errors
// become an opaque 500 so internals never leak to the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{
			Error:   "validation failed",
			Details: validationErr.Fields,
		})
		return
	}

	var stockErr *pharmacy.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, errorResponse{Error: stockErr.Error()})
		return
	}

	switch {
	case errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, auth.ErrTokenTypeMismatch),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrAccountInactive),
		errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusForbidden, errorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, staff.ErrStaffNotFound),
		errors.Is(err, visit.ErrVisitNotFound),
		errors.Is(err, pharmacy.ErrDrugNotFound),
		errors.Is(err, pharmacy.ErrPrescriptionNotFound),
		errors.Is(err, pharmacy.ErrInventoryNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrPatientAlreadyExists),
		errors.Is(err, patient.ErrPatientInUse),
		errors.Is(err, staff.ErrStaffAlreadyExists),
		errors.Is(err, visit.ErrInvalidTransition),
		errors.Is(err, visit.ErrVisitNotOpen),
		errors.Is(err, pharmacy.ErrDrugAlreadyExists),
		errors.Is(err, pharmacy.ErrDrugInactive),
		errors.Is(err, pharmacy.ErrDuplicateVisit),
		errors.Is(err, pharmacy.ErrDuplicateDrug),
		errors.Is(err, pharmacy.ErrInvalidState),
		errors.Is(err, billing.ErrDuplicateVisit),
		errors.Is(err, billing.ErrInvalidState):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrInvalidGender),
		errors.Is(err, patient.ErrNameRequired),
		errors.Is(err, staff.ErrInvalidRole),
		errors.Is(err, pharmacy.ErrInvalidQuantity),
		errors.Is(err, pharmacy.ErrEmptyPrescription),
		errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrInvalidMethod):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})

	default:
		log.Error("unhandled error", zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

type pageMeta struct {
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func pageParams(c *gin.Context) (page, pageSize int) {
	page = intQuery(c, "page", 1)
	pageSize = intQuery(c, "page_size", 20)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
