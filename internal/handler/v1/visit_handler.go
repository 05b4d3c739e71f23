package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain/visit"
	"github.com/careops/clinicflow/internal/service"
)

type VisitHandler struct {
	visits *service.VisitService
	log    *zap.Logger
}

func NewVisitHandler(visits *service.VisitService, log *zap.Logger) *VisitHandler {
	return &VisitHandler{visits: visits, log: log}
}

type openVisitRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID       *uuid.UUID `json:"doctor_id"`
	Department     string     `json:"department"`
	VisitTime      *time.Time `json:"visit_time"`
	ChiefComplaint string     `json:"chief_complaint"`
	Notes          string     `json:"notes"`
}

func (h *VisitHandler) Open(c *gin.Context) {
	var req openVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cmd := &visit.OpenVisitCommand{
		PatientID:      req.PatientID,
		DoctorID:       req.DoctorID,
		Department:     req.Department,
		ChiefComplaint: req.ChiefComplaint,
		Notes:          req.Notes,
	}
	if req.VisitTime != nil {
		cmd.VisitTime = *req.VisitTime
	}

	v, err := h.visits.Open(c.Request.Context(), actorFrom(c), cmd, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

type assignDoctorRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" binding:"required"`
}

func (h *VisitHandler) AssignDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid visit id"})
		return
	}

	var req assignDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	v, err := h.visits.AssignDoctor(c.Request.Context(), actorFrom(c), id, req.DoctorID, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type closeVisitRequest struct {
	Diagnosis     string     `json:"diagnosis"`
	NextVisitDate *time.Time `json:"next_visit_date"`
}

func (h *VisitHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid visit id"})
		return
	}

	var req closeVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	v, err := h.visits.Close(c.Request.Context(), actorFrom(c), id, req.Diagnosis, req.NextVisitDate, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VisitHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid visit id"})
		return
	}

	v, err := h.visits.Cancel(c.Request.Context(), actorFrom(c), id, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VisitHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid visit id"})
		return
	}

	v, err := h.visits.GetVisit(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *VisitHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	q := &visit.ListVisitsQuery{Page: page, PageSize: pageSize}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patient_id filter"})
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("doctor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid doctor_id filter"})
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := visit.Status(raw)
		q.Status = &status
	}

	result, err := h.visits.ListVisits(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"visits": result.Visits,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}
