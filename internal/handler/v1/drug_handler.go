package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/service"
)

type DrugHandler struct {
	drugs     *service.DrugService
	inventory *service.InventoryService
	log       *zap.Logger
}

func NewDrugHandler(drugs *service.DrugService, inventory *service.InventoryService, log *zap.Logger) *DrugHandler {
	return &DrugHandler{drugs: drugs, inventory: inventory, log: log}
}

type createDrugRequest struct {
	DrugCode             string          `json:"drug_code" binding:"required"`
	Name                 string          `json:"name" binding:"required"`
	Category             string          `json:"category"`
	Specification        string          `json:"specification"`
	Unit                 string          `json:"unit"`
	PurchasePrice        decimal.Decimal `json:"purchase_price"`
	SalePrice            decimal.Decimal `json:"sale_price"`
	Manufacturer         string          `json:"manufacturer"`
	PrescriptionRequired bool            `json:"prescription_required"`
	Description          string          `json:"description"`
	InitialQuantity      int             `json:"initial_quantity"`
	WarningLevel         int             `json:"warning_level"`
	Location             string          `json:"location"`
}

func (h *DrugHandler) Create(c *gin.Context) {
	var req createDrugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	d, err := h.drugs.CreateDrug(c.Request.Context(), actorFrom(c), &pharmacy.CreateDrugCommand{
		DrugCode:             req.DrugCode,
		Name:                 req.Name,
		Category:             req.Category,
		Specification:        req.Specification,
		Unit:                 req.Unit,
		PurchasePrice:        req.PurchasePrice,
		SalePrice:            req.SalePrice,
		Manufacturer:         req.Manufacturer,
		PrescriptionRequired: req.PrescriptionRequired,
		Description:          req.Description,
		InitialQuantity:      req.InitialQuantity,
		WarningLevel:         req.WarningLevel,
		Location:             req.Location,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

type updateDrugRequest struct {
	Name          *string          `json:"name"`
	Category      *string          `json:"category"`
	Specification *string          `json:"specification"`
	Unit          *string          `json:"unit"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Manufacturer  *string          `json:"manufacturer"`
	Description   *string          `json:"description"`
	IsActive      *bool            `json:"is_active"`
}

func (h *DrugHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid drug id"})
		return
	}

	var req updateDrugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	d, err := h.drugs.UpdateDrug(c.Request.Context(), actorFrom(c), id, &pharmacy.UpdateDrugCommand{
		Name:          req.Name,
		Category:      req.Category,
		Specification: req.Specification,
		Unit:          req.Unit,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
		Manufacturer:  req.Manufacturer,
		Description:   req.Description,
		IsActive:      req.IsActive,
	}, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DrugHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid drug id"})
		return
	}

	d, err := h.drugs.GetDrug(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DrugHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	result, err := h.drugs.ListDrugs(c.Request.Context(), &pharmacy.ListDrugsQuery{
		Search:     c.Query("search"),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"drugs": result.Drugs,
		"meta": pageMeta{
			TotalCount: result.TotalCount,
			Page:       result.Page,
			PageSize:   result.PageSize,
			TotalPages: result.TotalPages,
		},
	})
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *DrugHandler) Restock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid drug id"})
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	inv, err := h.inventory.Restock(c.Request.Context(), actorFrom(c), id, req.Quantity, c.ClientIP())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *DrugHandler) GetInventory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid drug id"})
		return
	}

	inv, err := h.inventory.GetByDrug(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *DrugHandler) ListLowStock(c *gin.Context) {
	views, err := h.inventory.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"low_stock": views})
}
