package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/decoraops/quotation-service/internal/http/middleware"
	"github.com/decoraops/quotation-service/internal/model"
)

func NewRouter(h *Handler, authMW, optionalAuthMW gin.HandlerFunc, corsOrigins []string, environment string) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.SessionHeader},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsOrigins) > 0 {
		corsConfig.AllowOrigins = corsOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authGroup := router.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", authMW, h.logout)

	quotation := router.Group("/quotation")
	// Ingestion accepts anonymous callers only when demo mode is enabled;
	// the service enforces that.
	quotation.POST("/generate", optionalAuthMW, h.generateQuotation)

	quotationAuthed := quotation.Group("/")
	quotationAuthed.Use(authMW)
	quotationAuthed.GET("/status", h.workflowStatus)
	quotationAuthed.POST("/abandon", h.abandonDraft)
	quotationAuthed.GET("/view/:id", h.viewQuotation)
	quotationAuthed.GET("/view/:id/pdf", h.exportQuotationPDF)
	quotationAuthed.PATCH("/view/:id/status", h.updateQuotationStatus)
	quotationAuthed.GET("/customer/:customerId", h.listQuotationsByCustomer)
	quotationAuthed.GET("/sales/:salesId", h.listQuotationsBySales)
	quotationAuthed.GET("/sales/:salesId/export", h.exportSalesBook)

	assign := quotationAuthed.Group("/assign")
	assign.Use(middleware.RequireRole(model.RoleSales))
	assign.POST("/request", h.requestAssignment)
	assign.POST("/confirm", h.confirmAssignment)
	assign.POST("/cancel", h.cancelAssignment)

	customer := router.Group("/customer")
	customer.Use(authMW)
	customer.POST("/create", middleware.RequireRole(model.RoleSales), h.createCustomer)
	customer.GET("/by-email/:email", h.customerByEmail)
	customer.GET("/sales/:salesId", h.listCustomersForSales)
	customer.GET("/list", h.listAllCustomers)

	admin := router.Group("/admin")
	admin.Use(authMW, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/products", h.listProducts)
	admin.POST("/add-product", h.addProduct)
	admin.DELETE("/delete-product/:id", h.deleteProduct)

	return router
}
