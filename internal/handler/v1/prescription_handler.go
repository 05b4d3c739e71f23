package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/service"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
	log           *zap.Logger
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions, log: log}
}

type createPrescriptionRequest struct {
	VisitID  uuid.UUID  `json:"visit_id" binding:"required"`
	DoctorID *uuid.UUID `json:"doctor_id"`
	Notes    string     `json:"notes"`
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := h.prescriptions.Create(c.Request.Context(), actorFrom(c), &pharmacy.CreatePrescriptionCommand{
		VisitID:  req.VisitID,
		DoctorID: req.DoctorID,
		Notes:    req.Notes,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type addItemRequest struct {
	DrugID   uuid.UUID `json:"drug_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required"`
	Dosage   string    `json:"dosage"`
	Notes    string    `json:"notes"`
}

func (h *PrescriptionHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid prescription id"})
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	item, err := h.prescriptions.AddItem(c.Request.Context(), actorFrom(c), &pharmacy.AddItemCommand{
		PrescriptionID: id,
		DrugID:         req.DrugID,
		Quantity:       req.Quantity,
		Dosage:         req.Dosage,
		Notes:          req.Notes,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PrescriptionHandler) Issue(c *gin.Context) {
	h.transition(c, h.prescriptions.Issue)
}

func (h *PrescriptionHandler) Dispense(c *gin.Context) {
	h.transition(c, h.prescriptions.Dispense)
}

func (h *PrescriptionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.prescriptions.Cancel)
}

type prescriptionTransition func(ctx context.Context, actor domain.Actor, id uuid.UUID, ip string) (*pharmacy.Prescription, error)

func (h *PrescriptionHandler) transition(c *gin.Context, op prescriptionTransition) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid prescription id"})
		return
	}

	p, err := op(c.Request.Context(), actorFrom(c), id, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid prescription id"})
		return
	}

	p, err := h.prescriptions.GetPrescription(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	q := &pharmacy.ListPrescriptionsQuery{Page: page, PageSize: pageSize}
	if raw := c.Query("status"); raw != "" {
		status := pharmacy.PrescriptionStatus(raw)
		q.Status = &status
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid doctor_id filter"})
			return
		}
		q.DoctorID = &id
	}

	result, err := h.prescriptions.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"prescriptions": result.Prescriptions,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}
