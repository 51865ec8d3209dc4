package cmd

import (
	"fmt"
	"net/http"
	"os"

	"maintdesk/api"
	apiappointment "maintdesk/api/appointment"
	apibilling "maintdesk/api/billing"
	"maintdesk/api/health"
	apireport "maintdesk/api/report"
	apirequest "maintdesk/api/request"
	apistock "maintdesk/api/stock"
	appointmentapp "maintdesk/application/appointment"
	billingapp "maintdesk/application/billing"
	reportapp "maintdesk/application/report"
	requestapp "maintdesk/application/request"
	stockapp "maintdesk/application/stock"
	"maintdesk/config"
	"maintdesk/infrastructure/persistence/mysql"
	"maintdesk/infrastructure/persistence/retry"
	"maintdesk/infrastructure/roster"
	"maintdesk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppBuilder builds an App with customizable components
type AppBuilder struct {
	cfg          *config.Config
	controllers  []api.ControllerRegister
	middlewares  []api.MiddlewareRegister
	customRoutes []api.Route
	useDefaultDB bool
}

// NewBuilder creates a new AppBuilder
func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{
		cfg:          cfg,
		controllers:  []api.ControllerRegister{},
		middlewares:  []api.MiddlewareRegister{},
		customRoutes: []api.Route{},
		useDefaultDB: true,
	}
}

// WithController adds a controller to the app
func (b *AppBuilder) WithController(c api.ControllerRegister) *AppBuilder {
	b.controllers = append(b.controllers, c)
	return b
}

// WithMiddleware adds a middleware to the app
func (b *AppBuilder) WithMiddleware(m api.MiddlewareRegister) *AppBuilder {
	b.middlewares = append(b.middlewares, m)
	return b
}

// WithRoute adds a custom route
func (b *AppBuilder) WithRoute(method, path string, handler gin.HandlerFunc) *AppBuilder {
	b.customRoutes = append(b.customRoutes, api.Route{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
	return b
}

// DisableDefaultDB disables the default MySQL database initialization
func (b *AppBuilder) DisableDefaultDB() *AppBuilder {
	b.useDefaultDB = false
	return b
}

// Build creates the App instance
func (b *AppBuilder) Build() *App {
	// Initialize logger
	if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	var db *gorm.DB
	var services *Services

	// Initialize default database if enabled
	if b.useDefaultDB {
		db = b.initDefaultDatabase()
		services = BuildServices(db, b.cfg)
	}

	// Create default controllers if not provided
	if !b.hasHealthController() {
		b.controllers = append(b.controllers, b.getOrCreateHealthController(db))
	}
	if services != nil {
		if !hasController[*apirequest.Controller](b.controllers) {
			b.controllers = append(b.controllers, apirequest.NewController(services.Requests))
		}
		if !hasController[*apiappointment.Controller](b.controllers) {
			b.controllers = append(b.controllers, apiappointment.NewController(services.Appointments))
		}
		if !hasController[*apireport.Controller](b.controllers) {
			b.controllers = append(b.controllers, apireport.NewController(services.Reports))
		}
		if !hasController[*apibilling.Controller](b.controllers) {
			b.controllers = append(b.controllers, apibilling.NewController(services.Billing))
		}
		if !hasController[*apistock.Controller](b.controllers) {
			b.controllers = append(b.controllers, apistock.NewController(services.Stock))
		}
	}

	// Create router with controllers and middleware
	router := api.NewRouter(b.cfg, b.controllers, b.middlewares, b.customRoutes)
	router.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     db,
	}
}

// Services bundles the application services over one database handle.
// The worker binary reuses it for the reconcile loop.
type Services struct {
	Requests     *requestapp.ApplicationService
	Appointments *appointmentapp.ApplicationService
	Reports      *reportapp.ApplicationService
	Billing      *billingapp.ApplicationService
	Stock        *stockapp.ApplicationService
}

// BuildServices wires repositories, the unit-of-work factory and the
// application services.
func BuildServices(db *gorm.DB, cfg *config.Config) *Services {
	uowFactory := mysql.NewUnitOfWorkFactory(db, retry.FromAppConfig(cfg))

	requestRepo := mysql.NewRequestRepository(db)
	feedbackRepo := mysql.NewFeedbackRepository(db)
	appointmentRepo := mysql.NewAppointmentRepository(db)
	reportRepo := mysql.NewReportRepository(db)
	invoiceRepo := mysql.NewInvoiceRepository(db)
	transactionRepo := mysql.NewTransactionRepository(db)
	accessoryRepo := mysql.NewAccessoryRepository(db)
	stockTxRepo := mysql.NewStockTransactionRepository(db)

	requests := requestapp.NewApplicationService(
		requestRepo, feedbackRepo, appointmentRepo, reportRepo, invoiceRepo,
		uowFactory, cfg.Scheduling)
	appointments := appointmentapp.NewApplicationService(
		appointmentRepo, requestRepo, roster.NewStatic(cfg.Roster), uowFactory)
	reports := reportapp.NewApplicationService(
		reportRepo, requestRepo, appointmentRepo, invoiceRepo, uowFactory)
	billing := billingapp.NewApplicationService(
		invoiceRepo, transactionRepo, reportRepo, requestRepo,
		accessoryRepo, stockTxRepo, requests, uowFactory)
	stock := stockapp.NewApplicationService(accessoryRepo, stockTxRepo, uowFactory)

	return &Services{
		Requests:     requests,
		Appointments: appointments,
		Reports:      reports,
		Billing:      billing,
		Stock:        stock,
	}
}

func (b *AppBuilder) initDefaultDatabase() *gorm.DB {
	logger.Info("Using MySQL/GORM persistence layer")

	db, err := NewMySQLConfig(b.cfg).Connect()
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("Failed to ping MySQL", zap.Error(err))
	}

	logger.Info("Connected to MySQL successfully")

	// Auto migration in development environment
	if b.cfg.IsDevelopment() {
		if err := mysql.AutoMigrate(db); err != nil {
			logger.Fatal("Failed to auto migrate", zap.Error(err))
		}
	}

	return db
}

func hasController[T api.ControllerRegister](controllers []api.ControllerRegister) bool {
	for _, c := range controllers {
		if _, ok := c.(T); ok {
			return true
		}
	}
	return false
}

func (b *AppBuilder) hasHealthController() bool {
	return hasController[*health.Controller](b.controllers)
}

func (b *AppBuilder) getOrCreateHealthController(db *gorm.DB) *health.Controller {
	var healthDB interface{}
	if db != nil {
		sqlDB, _ := db.DB()
		healthDB = sqlDB
	}
	return health.NewController(b.cfg, healthDB)
}
