package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/service"
)

type PatientHandler struct {
	patients *service.PatientService
	log      *zap.Logger
}

func NewPatientHandler(patients *service.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, log: log}
}

type createPatientRequest struct {
	Name             string     `json:"name" binding:"required"`
	Gender           string     `json:"gender" binding:"required"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Phone            string     `json:"phone"`
	IDNumber         *string    `json:"id_number"`
	Address          string     `json:"address"`
	EmergencyContact string     `json:"emergency_contact"`
	EmergencyPhone   string     `json:"emergency_phone"`
	BloodType        string     `json:"blood_type"`
	AllergyHistory   string     `json:"allergy_history"`
	MedicalHistory   string     `json:"medical_history"`
}

func (h *PatientHandler) Create(c *gin.Context) {
	var req createPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := h.patients.CreatePatient(c.Request.Context(), actorFrom(c), &patient.CreatePatientCommand{
		Name:             req.Name,
		Gender:           patient.Gender(req.Gender),
		DateOfBirth:      req.DateOfBirth,
		Phone:            req.Phone,
		IDNumber:         req.IDNumber,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
		BloodType:        req.BloodType,
		AllergyHistory:   req.AllergyHistory,
		MedicalHistory:   req.MedicalHistory,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type updatePatientRequest struct {
	Phone            *string `json:"phone"`
	Address          *string `json:"address"`
	EmergencyContact *string `json:"emergency_contact"`
	EmergencyPhone   *string `json:"emergency_phone"`
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patient id"})
		return
	}

	var req updatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := h.patients.UpdatePatient(c.Request.Context(), actorFrom(c), id, &patient.UpdatePatientCommand{
		Phone:            req.Phone,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
		EmergencyPhone:   req.EmergencyPhone,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patient id"})
		return
	}

	if err := h.patients.DeletePatient(c.Request.Context(), actorFrom(c), id, c.ClientIP()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patient id"})
		return
	}

	p, err := h.patients.GetPatient(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PatientHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.patients.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"patients": result.Patients,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}
