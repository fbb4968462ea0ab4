package user

import (
	"go-inspect/internal/config"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	service    UserService
}

func NewUserApi(controller *UserController, cfg *config.Config, service UserService) *UserApi {
	return &UserApi{
		controller: controller,
		config:     cfg,
		service:    service,
	}
}

// Setup registers user account routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users",
		middleware.AuthMiddleware(h.config.SkipAuth),
		RequireActive(h.service))

	admin := RequireAdmin()
	users.Get("/", admin, h.controller.List)
	users.Post("/", admin, h.controller.Create)
	users.Get("/:id", h.controller.Get)
	users.Put("/:id", h.controller.Update)
	users.Delete("/:id", admin, h.controller.Deactivate)
}
