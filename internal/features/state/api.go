package state

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type StateApi struct {
	controller  *StateController
	config      *config.Config
	userService user.UserService
}

func NewStateApi(controller *StateController, cfg *config.Config, userService user.UserService) *StateApi {
	return &StateApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers possible-state routes
func (h *StateApi) Setup(app *fiber.App) {
	states := app.Group("/api/states",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))

	states.Get("/machine-type/:machineTypeId", h.controller.ListByMachineType)
	states.Get("/:id", h.controller.Get)

	states.Post("/", user.RequireAdmin(), h.controller.Create)
	states.Put("/:id", user.RequireAdmin(), h.controller.Update)
	states.Delete("/:id", user.RequireAdmin(), h.controller.Delete)
}
