package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-inspect/internal/common/api"
	"go-inspect/internal/config"
	"go-inspect/internal/database"
	"go-inspect/internal/features/auth"
	"go-inspect/internal/features/checklist"
	"go-inspect/internal/features/machine"
	"go-inspect/internal/features/machinetype"
	"go-inspect/internal/features/report"
	"go-inspect/internal/features/state"
	"go-inspect/internal/features/system"
	"go-inspect/internal/features/user"
	"go-inspect/internal/logger"
	"go-inspect/internal/middleware"
	"go-inspect/pkg/utils"

	_ "go-inspect/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
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

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			user.NewUserRepository,
			machinetype.NewMachineTypeRepository,
			machine.NewMachineRepository,
			state.NewStateRepository,
			checklist.NewChecklistRepository,
			report.NewReportRepository,

			user.NewUserService,
			auth.NewAuthService,
			machinetype.NewMachineTypeService,
			machine.NewMachineService,
			state.NewStateService,
			checklist.NewChecklistService,
			report.NewReportService,
			report.NewTextRenderer,

			// Interface adapters wiring cross-feature usage checks without
			// circular imports.
			func(r machine.MachineRepository) machinetype.UsageChecker { return r },
			func(r report.ReportRepository) machine.UsageChecker { return r },
			func(r report.ReportRepository) state.UsageChecker { return r },
			func(r report.ReportRepository) checklist.UsageChecker { return r },

			auth.NewAuthController,
			user.NewUserController,
			machinetype.NewMachineTypeController,
			machine.NewMachineController,
			state.NewStateController,
			checklist.NewChecklistController,
			report.NewReportController,

			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(machinetype.NewMachineTypeApi),
			AsRoute(machine.NewMachineApi),
			AsRoute(state.NewStateApi),
			AsRoute(checklist.NewChecklistApi),
			AsRoute(report.NewReportApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
