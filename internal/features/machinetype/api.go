package machinetype

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MachineTypeApi struct {
	controller  *MachineTypeController
	config      *config.Config
	userService user.UserService
}

func NewMachineTypeApi(controller *MachineTypeController, cfg *config.Config, userService user.UserService) *MachineTypeApi {
	return &MachineTypeApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers machine type routes
func (h *MachineTypeApi) Setup(app *fiber.App) {
	types := app.Group("/api/machine-types",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))

	types.Get("/", h.controller.List)
	types.Get("/:id", h.controller.Get)

	// Catalog mutation is administrator-only
	types.Post("/", user.RequireAdmin(), h.controller.Create)
	types.Put("/:id", user.RequireAdmin(), h.controller.Update)
	types.Delete("/:id", user.RequireAdmin(), h.controller.Delete)
}
