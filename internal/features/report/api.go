package report

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	controller  *ReportController
	config      *config.Config
	userService user.UserService
}

func NewReportApi(controller *ReportController, cfg *config.Config, userService user.UserService) *ReportApi {
	return &ReportApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers report lifecycle and detail routes
func (h *ReportApi) Setup(app *fiber.App) {
	reports := app.Group("/api/reports",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))

	mechanic := user.RequireMechanic()

	reports.Get("/", h.controller.List)
	reports.Get("/export.xlsx", user.RequireAdmin(), h.controller.ExportXLSX)
	reports.Post("/", mechanic, h.controller.Create)
	reports.Get("/:id", h.controller.Get)
	reports.Get("/:id/full", h.controller.GetFull)
	reports.Put("/:id", mechanic, h.controller.Update)
	reports.Post("/:id/finalize", mechanic, h.controller.Finalize)
	reports.Delete("/:id", h.controller.Delete)

	reports.Get("/:id/details", h.controller.GroupedDetails)
	reports.Post("/:id/details", mechanic, h.controller.AddDetail)
	reports.Post("/:id/details/batch", mechanic, h.controller.AddDetailsBatch)
	reports.Put("/details/:detailId", mechanic, h.controller.UpdateDetail)
	reports.Delete("/details/:detailId", h.controller.DeleteDetail)

	reports.Get("/:id/pdf", h.controller.ExportPDF)
}
