package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/staff"
	"github.com/careops/clinicflow/internal/service"
)

type StaffHandler struct {
	staff *service.StaffService
	log   *zap.Logger
}

func NewStaffHandler(staffSvc *service.StaffService, log *zap.Logger) *StaffHandler {
	return &StaffHandler{staff: staffSvc, log: log}
}

type createStaffRequest struct {
	StaffNo    string     `json:"staff_no" binding:"required"`
	Name       string     `json:"name" binding:"required"`
	Role       string     `json:"role" binding:"required"`
	Department string     `json:"department"`
	Position   string     `json:"position"`
	Specialty  string     `json:"specialty"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	HireDate   *time.Time `json:"hire_date"`
	LoginEmail string     `json:"login_email" binding:"required,email"`
	Password   string     `json:"password" binding:"required"`
}

func (h *StaffHandler) Create(c *gin.Context) {
	var req createStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s, err := h.staff.CreateStaff(c.Request.Context(), actorFrom(c), &staff.CreateStaffCommand{
		StaffNo:    req.StaffNo,
		Name:       req.Name,
		Role:       domain.Role(req.Role),
		Department: req.Department,
		Position:   req.Position,
		Specialty:  req.Specialty,
		Phone:      req.Phone,
		Email:      req.Email,
		HireDate:   req.HireDate,
		LoginEmail: req.LoginEmail,
		Password:   req.Password,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *StaffHandler) SetActive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid staff id"})
		return
	}

	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := h.staff.SetActive(c.Request.Context(), actorFrom(c), id, *req.Active, c.ClientIP()); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": *req.Active})
}

func (h *StaffHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid staff id"})
		return
	}

	s, err := h.staff.GetStaff(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *StaffHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	q := &staff.ListStaffQuery{Page: page, PageSize: pageSize}
	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		q.Role = &role
	}
	if raw := c.Query("active"); raw != "" {
		active := raw == "true"
		q.Active = &active
	}

	result, err := h.staff.ListStaff(c.Request.Context(), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"staff": result.Staff,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}
