package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/careops/clinicflow/internal/config"
	"github.com/careops/clinicflow/internal/service"
	"github.com/careops/clinicflow/pkg/auth"
	"github.com/careops/clinicflow/pkg/metrics"
)

type Dependencies struct {
	Config     *config.Config
	Log        *zap.Logger
	JWTManager *auth.JWTManager
	Collector  *metrics.Collector

	Identity      *service.IdentityService
	Auth          *service.AuthService
	Patients      *service.PatientService
	Staff         *service.StaffService
	Visits        *service.VisitService
	Prescriptions *service.PrescriptionService
	Drugs         *service.DrugService
	Inventory     *service.InventoryService
	Billing       *service.BillingService
}

// NewRouter wires the middleware chain and the versioned route tree.
// Everything under /api/v1 except login and refresh requires a valid
// access token.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(deps.Log))
	r.Use(Metrics(deps.Collector))
	r.Use(CORS(deps.Config.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	authHandler := NewAuthHandler(deps.Auth, deps.Log)
	patientHandler := NewPatientHandler(deps.Patients, deps.Log)
	staffHandler := NewStaffHandler(deps.Staff, deps.Log)
	visitHandler := NewVisitHandler(deps.Visits, deps.Log)
	prescriptionHandler := NewPrescriptionHandler(deps.Prescriptions, deps.Log)
	drugHandler := NewDrugHandler(deps.Drugs, deps.Inventory, deps.Log)
	billingHandler := NewBillingHandler(deps.Billing, deps.Log)

	api := r.Group("/api/v1")

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(Authenticate(deps.JWTManager, deps.Identity))

	authed.POST("/auth/change-password", authHandler.ChangePassword)

	patients := authed.Group("/patients")
	{
		patients.POST("", patientHandler.Create)
		patients.GET("", patientHandler.List)
		patients.GET("/:id", patientHandler.Get)
		patients.PATCH("/:id", patientHandler.Update)
		patients.DELETE("/:id", patientHandler.Delete)
	}

	staffRoutes := authed.Group("/staff")
	{
		staffRoutes.POST("", staffHandler.Create)
		staffRoutes.GET("", staffHandler.List)
		staffRoutes.GET("/:id", staffHandler.Get)
		staffRoutes.PATCH("/:id/active", staffHandler.SetActive)
	}

	visits := authed.Group("/visits")
	{
		visits.POST("", visitHandler.Open)
		visits.GET("", visitHandler.List)
		visits.GET("/:id", visitHandler.Get)
		visits.PATCH("/:id/doctor", visitHandler.AssignDoctor)
		visits.POST("/:id/close", visitHandler.Close)
		visits.POST("/:id/cancel", visitHandler.Cancel)
	}

	prescriptions := authed.Group("/prescriptions")
	{
		prescriptions.POST("", prescriptionHandler.Create)
		prescriptions.GET("", prescriptionHandler.List)
		prescriptions.GET("/:id", prescriptionHandler.Get)
		prescriptions.POST("/:id/items", prescriptionHandler.AddItem)
		prescriptions.POST("/:id/issue", prescriptionHandler.Issue)
		prescriptions.POST("/:id/dispense", prescriptionHandler.Dispense)
		prescriptions.POST("/:id/cancel", prescriptionHandler.Cancel)
	}

	drugs := authed.Group("/drugs")
	{
		drugs.POST("", drugHandler.Create)
		drugs.GET("", drugHandler.List)
		drugs.GET("/:id", drugHandler.Get)
		drugs.PATCH("/:id", drugHandler.Update)
		drugs.GET("/:id/inventory", drugHandler.GetInventory)
		drugs.POST("/:id/restock", drugHandler.Restock)
	}
	authed.GET("/inventory/low-stock", drugHandler.ListLowStock)

	invoices := authed.Group("/invoices")
	{
		invoices.POST("", billingHandler.Create)
		invoices.GET("", billingHandler.List)
		invoices.GET("/:id", billingHandler.Get)
		invoices.POST("/:id/payments", billingHandler.ApplyPayment)
		invoices.GET("/:id/payments", billingHandler.ListPayments)
		invoices.POST("/:id/refund", billingHandler.Refund)
	}

	return r
}
