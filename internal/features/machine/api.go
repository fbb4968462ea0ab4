package machine

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MachineApi struct {
	controller  *MachineController
	config      *config.Config
	userService user.UserService
}

func NewMachineApi(controller *MachineController, cfg *config.Config, userService user.UserService) *MachineApi {
	return &MachineApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers machine routes
func (h *MachineApi) Setup(app *fiber.App) {
	machines := app.Group("/api/machines",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))

	machines.Get("/", h.controller.List)
	machines.Get("/:id", h.controller.Get)

	machines.Post("/", user.RequireAdmin(), h.controller.Create)
	machines.Put("/:id", user.RequireAdmin(), h.controller.Update)
	machines.Delete("/:id", user.RequireAdmin(), h.controller.Delete)
}
