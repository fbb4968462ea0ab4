package checklist

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ChecklistApi struct {
	controller  *ChecklistController
	config      *config.Config
	userService user.UserService
}

func NewChecklistApi(controller *ChecklistController, cfg *config.Config, userService user.UserService) *ChecklistApi {
	return &ChecklistApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers checklist template routes
func (h *ChecklistApi) Setup(app *fiber.App) {
	checklists := app.Group("/api/checklists",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))

	checklists.Get("/", h.controller.List)
	checklists.Get("/machine-type/:machineTypeId", h.controller.ListByMachineType)
	checklists.Get("/:id", h.controller.Get)
	checklists.Get("/:id/full", h.controller.GetWithGroups)

	admin := user.RequireAdmin()
	checklists.Post("/", admin, h.controller.Create)
	checklists.Put("/:id", admin, h.controller.Update)
	checklists.Delete("/:id", admin, h.controller.Delete)

	checklists.Post("/groups", admin, h.controller.CreateGroup)
	checklists.Put("/groups/:id", admin, h.controller.UpdateGroup)
	checklists.Delete("/groups/:id", admin, h.controller.DeleteGroup)

	checklists.Post("/items", admin, h.controller.CreateItem)
	checklists.Put("/items/:id", admin, h.controller.UpdateItem)
	checklists.Delete("/items/:id", admin, h.controller.DeleteItem)
}
