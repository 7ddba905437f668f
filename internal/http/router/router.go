package router

import (
	"encoding/json"
	"net/http"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/buildcraft-as/construct-api/internal/database"
	"github.com/buildcraft-as/construct-api/internal/http/handler"
	"github.com/buildcraft-as/construct-api/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	companyHandler      *handler.CompanyHandler
	customerHandler     *handler.CustomerHandler
	projectHandler      *handler.ProjectHandler
	quoteHandler        *handler.QuoteHandler
	invoiceHandler      *handler.InvoiceHandler
	inventoryHandler    *handler.InventoryHandler
	workOrderHandler    *handler.WorkOrderHandler
	chatHandler         *handler.ChatHandler
	attachmentHandler   *handler.AttachmentHandler
	notificationHandler *handler.NotificationHandler
	analyticsHandler    *handler.AnalyticsHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	companyHandler *handler.CompanyHandler,
	customerHandler *handler.CustomerHandler,
	projectHandler *handler.ProjectHandler,
	quoteHandler *handler.QuoteHandler,
	invoiceHandler *handler.InvoiceHandler,
	inventoryHandler *handler.InventoryHandler,
	workOrderHandler *handler.WorkOrderHandler,
	chatHandler *handler.ChatHandler,
	attachmentHandler *handler.AttachmentHandler,
	notificationHandler *handler.NotificationHandler,
	analyticsHandler *handler.AnalyticsHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		companyHandler:      companyHandler,
		customerHandler:     customerHandler,
		projectHandler:      projectHandler,
		quoteHandler:        quoteHandler,
		invoiceHandler:      invoiceHandler,
		inventoryHandler:    inventoryHandler,
		workOrderHandler:    workOrderHandler,
		chatHandler:         chatHandler,
		attachmentHandler:   attachmentHandler,
		notificationHandler: notificationHandler,
		analyticsHandler:    analyticsHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":  "unhealthy",
				"service": "database",
				"error":   err.Error(),
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "database",
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/companies", rt.companyHandler.Create)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Post("/auth/switch-company", rt.authHandler.SwitchCompany)

			// Company
			r.Route("/company", func(r chi.Router) {
				r.Get("/", rt.companyHandler.Get)
				r.Put("/", rt.companyHandler.Update)
				r.Get("/members", rt.companyHandler.ListMembers)
				r.Post("/members", rt.companyHandler.AddMember)
				r.Put("/members/{userId}", rt.companyHandler.UpdateMemberRole)
				r.Delete("/members/{userId}", rt.companyHandler.RemoveMember)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Post("/link-account", rt.customerHandler.LinkClientAccount)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
				r.Delete("/{id}", rt.customerHandler.Delete)
			})

			// Projects
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Delete("/{id}", rt.projectHandler.Delete)

				r.Post("/{id}/phases", rt.projectHandler.CreatePhase)
				r.Put("/{id}/phases/{phaseId}", rt.projectHandler.UpdatePhase)
				r.Delete("/{id}/phases/{phaseId}", rt.projectHandler.DeletePhase)

				r.Get("/{id}/notes", rt.projectHandler.ListNotes)
				r.Post("/{id}/notes", rt.projectHandler.CreateNote)
				r.Delete("/{id}/notes/{noteId}", rt.projectHandler.DeleteNote)

				r.Get("/{id}/messages", rt.chatHandler.ListMessages)
				r.Post("/{id}/messages", rt.chatHandler.PostMessage)
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Delete("/{id}", rt.quoteHandler.Delete)

				// Lifecycle endpoints
				r.Post("/{id}/send", rt.quoteHandler.Send)
				r.Post("/{id}/approve", rt.quoteHandler.Approve)
				r.Post("/{id}/reject", rt.quoteHandler.Reject)
				r.Post("/{id}/convert", rt.quoteHandler.ConvertToInvoice)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Put("/{id}", rt.invoiceHandler.Update)

				r.Post("/{id}/send", rt.invoiceHandler.Send)
				r.Post("/{id}/cancel", rt.invoiceHandler.Cancel)
				r.Post("/{id}/payments", rt.invoiceHandler.RecordPayment)
			})

			// Inventory
			r.Route("/materials", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.ListMaterials)
				r.Post("/", rt.inventoryHandler.CreateMaterial)
				r.Get("/low-stock", rt.inventoryHandler.ListLowStock)
				r.Get("/{id}", rt.inventoryHandler.GetMaterial)
				r.Put("/{id}", rt.inventoryHandler.UpdateMaterial)
				r.Delete("/{id}", rt.inventoryHandler.DeleteMaterial)
			})
			r.Route("/usage", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.ListUsage)
				r.Post("/", rt.inventoryHandler.RecordUsage)
			})
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.ListSuppliers)
				r.Post("/", rt.inventoryHandler.CreateSupplier)
				r.Get("/{id}", rt.inventoryHandler.GetSupplier)
				r.Delete("/{id}", rt.inventoryHandler.DeleteSupplier)
			})
			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", rt.inventoryHandler.ListPurchaseOrders)
				r.Post("/", rt.inventoryHandler.CreatePurchaseOrder)
				r.Get("/{id}", rt.inventoryHandler.GetPurchaseOrder)
				r.Post("/{id}/order", rt.inventoryHandler.MarkOrdered)
				r.Post("/{id}/receive", rt.inventoryHandler.Receive)
				r.Post("/{id}/cancel", rt.inventoryHandler.Cancel)
			})

			// Equipment and subcontracted work
			r.Route("/equipment", func(r chi.Router) {
				r.Get("/", rt.workOrderHandler.ListEquipment)
				r.Post("/", rt.workOrderHandler.CreateEquipment)
				r.Get("/{id}", rt.workOrderHandler.GetEquipment)
				r.Put("/{id}", rt.workOrderHandler.UpdateEquipment)
				r.Delete("/{id}", rt.workOrderHandler.DeleteEquipment)
			})
			r.Route("/subcontractors", func(r chi.Router) {
				r.Get("/", rt.workOrderHandler.ListSubcontractors)
				r.Post("/", rt.workOrderHandler.CreateSubcontractor)
				r.Get("/{id}", rt.workOrderHandler.GetSubcontractor)
				r.Delete("/{id}", rt.workOrderHandler.DeleteSubcontractor)
			})
			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", rt.workOrderHandler.ListWorkOrders)
				r.Post("/", rt.workOrderHandler.CreateWorkOrder)
				r.Get("/{id}", rt.workOrderHandler.GetWorkOrder)
				r.Put("/{id}", rt.workOrderHandler.UpdateWorkOrder)
			})

			// Files
			r.Route("/files", func(r chi.Router) {
				r.Get("/", rt.attachmentHandler.List)
				r.Post("/upload", rt.attachmentHandler.Upload)
				r.Get("/{id}/download", rt.attachmentHandler.Download)
				r.Delete("/{id}", rt.attachmentHandler.Delete)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.UnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkRead)
			})

			// Analytics
			r.Route("/analytics", func(r chi.Router) {
				r.Get("/invoices", rt.analyticsHandler.Invoices)
				r.Get("/materials", rt.analyticsHandler.Materials)
				r.Get("/projects", rt.analyticsHandler.Projects)
				r.Get("/revenue", rt.analyticsHandler.Revenue)
			})

			// Platform admin
			r.Get("/admin/stats", rt.analyticsHandler.AdminStats)
		})
	})

	return r
}
