package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/service"
)

type BillingHandler struct {
	billing *service.BillingService
	log     *zap.Logger
}

func NewBillingHandler(billingSvc *service.BillingService, log *zap.Logger) *BillingHandler {
	return &BillingHandler{billing: billingSvc, log: log}
}

type createInvoiceRequest struct {
	VisitID uuid.UUID `json:"visit_id" binding:"required"`
	Notes   string    `json:"notes"`
}

func (h *BillingHandler) Create(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	inv, err := h.billing.CreateInvoice(c.Request.Context(), actorFrom(c), &billing.CreateInvoiceCommand{
		VisitID: req.VisitID,
		Notes:   req.Notes,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

type applyPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
	Note   string          `json:"note"`
}

func (h *BillingHandler) ApplyPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	var req applyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	payment, inv, err := h.billing.ApplyPayment(c.Request.Context(), actorFrom(c), &billing.ApplyPaymentCommand{
		InvoiceID: id,
		Amount:    req.Amount,
		Method:    billing.PaymentMethod(req.Method),
		Note:      req.Note,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment, "invoice": inv})
}

func (h *BillingHandler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	inv, err := h.billing.Refund(c.Request.Context(), actorFrom(c), id, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *BillingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	inv, err := h.billing.GetInvoice(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *BillingHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	q := &billing.ListInvoicesQuery{Page: page, PageSize: pageSize}
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid patient_id filter"})
			return
		}
		q.PatientID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := billing.InvoiceStatus(raw)
		q.Status = &status
	}

	result, err := h.billing.ListInvoices(c.Request.Context(), actorFrom(c), q)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoices": result.Invoices,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid invoice id"})
		return
	}

	payments, err := h.billing.ListPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
