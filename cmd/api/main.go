package main

import (
	"context"
	"fmt"
	"time"

	_ "broker-crm/docs" // Import swagger docs
	common_api "broker-crm/internal/common/api"
	"broker-crm/internal/config"
	"broker-crm/internal/database"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/daily_report"
	"broker-crm/internal/features/delivery"
	"broker-crm/internal/features/document"
	"broker-crm/internal/features/email_template"
	"broker-crm/internal/features/field_catalog"
	"broker-crm/internal/features/file"
	"broker-crm/internal/features/record"
	"broker-crm/internal/features/settings"
	"broker-crm/internal/features/system"
	"broker-crm/internal/logger"
	"broker-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             int(file.MaxFileSize) + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every member of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer listens in a goroutine and shuts Fiber down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Error("server failed", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, fieldRepo field_catalog.FieldRepository, settingsRepo settings.SettingsRepository, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := fieldRepo.EnsureIndexes(ctx); err != nil {
					log.Warn("failed to ensure field indexes", zap.Error(err))
				}
				if err := settingsRepo.EnsureIndexes(ctx); err != nil {
					log.Warn("failed to ensure settings indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// @title           Broker CRM API
// @version         1.0
// @description     Merge templates, borrower documents and daily reports for a mortgage brokerage.

// @host            localhost:8000
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			// Repositories
			audit.NewAuditRepository,
			settings.NewSettingsRepository,
			record.NewRecordRepository,
			field_catalog.NewFieldRepository,
			email_template.NewEmailTemplateRepository,
			delivery.NewEmailRepository,
			file.NewFileRepository,
			file.NewStorage,

			// Services
			system.NewHub,
			audit.NewAuditService,
			settings.NewSettingsService,
			record.NewRecordService,
			field_catalog.NewFieldService,
			delivery.NewSMTPMailer,
			delivery.NewDeliveryService,
			file.NewFileService,
			email_template.NewContextBuilder,
			email_template.NewEmailTemplateService,
			document.NewDocumentService,
			daily_report.NewDailyReportService,
			daily_report.NewScheduler,

			// Interface adapters
			func(h *system.Hub) delivery.Broadcaster { return h },
			func(db *database.MongodbDB) system.Pinger { return db },

			// Controllers
			audit.NewAuditController,
			settings.NewSettingsController,
			record.NewRecordController,
			field_catalog.NewFieldController,
			delivery.NewDeliveryController,
			file.NewFileController,
			email_template.NewEmailTemplateController,
			document.NewDocumentController,
			daily_report.NewDailyReportController,
			system.NewHealthController,
			system.NewWebSocketController,

			// Routes
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(record.NewRecordApi),
			AsRoute(field_catalog.NewFieldApi),
			AsRoute(delivery.NewDeliveryApi),
			AsRoute(file.NewFileApi),
			AsRoute(email_template.NewEmailTemplateApi),
			AsRoute(document.NewDocumentApi),
			AsRoute(daily_report.NewDailyReportApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			daily_report.RegisterScheduler,
			system.RegisterHub,
		),
	)

	app.Run()
}
