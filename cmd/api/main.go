package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buildcraft-as/construct-api/internal/auth"
	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/buildcraft-as/construct-api/internal/database"
	"github.com/buildcraft-as/construct-api/internal/http/handler"
	"github.com/buildcraft-as/construct-api/internal/http/middleware"
	"github.com/buildcraft-as/construct-api/internal/http/router"
	"github.com/buildcraft-as/construct-api/internal/jobs"
	"github.com/buildcraft-as/construct-api/internal/logger"
	"github.com/buildcraft-as/construct-api/internal/repository"
	"github.com/buildcraft-as/construct-api/internal/service"
	"github.com/buildcraft-as/construct-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db, numberSequenceRepo)
	materialRepo := repository.NewMaterialRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	subcontractorRepo := repository.NewSubcontractorRepository(db)
	chatRepo := repository.NewChatRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	// Services
	tokens := auth.NewTokenManager(&cfg.Auth)
	notificationService := service.NewNotificationService(notificationRepo, companyRepo, log)
	authService := service.NewAuthService(userRepo, companyRepo, customerRepo, tokens, log)
	companyService := service.NewCompanyService(companyRepo, userRepo, log)
	customerService := service.NewCustomerService(customerRepo, userRepo, companyRepo, log)
	projectService := service.NewProjectService(projectRepo, customerRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, invoiceRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, notificationService, log)
	inventoryService := service.NewInventoryService(materialRepo, supplierRepo, poRepo, projectRepo, notificationService, log)
	workOrderService := service.NewWorkOrderService(equipmentRepo, subcontractorRepo, projectRepo, log)
	chatService := service.NewChatService(chatRepo, projectRepo, userRepo, log)
	attachmentService := service.NewAttachmentService(attachmentRepo, projectRepo, invoiceRepo, fileStorage, log)
	analyticsService := service.NewAnalyticsService(analyticsRepo, materialRepo, userRepo, companyRepo, projectRepo, log)

	// Middleware
	authMiddleware := auth.NewMiddleware(cfg, tokens, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	companyHandler := handler.NewCompanyHandler(companyService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	projectHandler := handler.NewProjectHandler(projectService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, log)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService, log)
	chatHandler := handler.NewChatHandler(chatService, log)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, fileStorage.MaxSize(), log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		companyHandler,
		customerHandler,
		projectHandler,
		quoteHandler,
		invoiceHandler,
		inventoryHandler,
		workOrderHandler,
		chatHandler,
		attachmentHandler,
		notificationHandler,
		analyticsHandler,
	)

	// Background scans
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		alertJobs := jobs.NewAlertJobs(analyticsRepo, materialRepo, invoiceRepo, notificationService, log)

		if err := scheduler.AddJob("low-stock-scan", cfg.Jobs.LowStockCron, alertJobs.ScanLowStock); err != nil {
			return fmt.Errorf("failed to register low stock job: %w", err)
		}
		if err := scheduler.AddJob("overdue-invoice-scan", cfg.Jobs.OverdueInvoiceCron, alertJobs.ScanOverdueInvoices); err != nil {
			return fmt.Errorf("failed to register overdue invoice job: %w", err)
		}
		scheduler.Start()
	} else {
		log.Info("background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("server stopped gracefully")
	}

	return nil
}
