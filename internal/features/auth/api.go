package auth

import (
	"go-inspect/internal/config"
	"go-inspect/internal/features/user"
	"go-inspect/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller  *AuthController
	config      *config.Config
	userService user.UserService
}

func NewAuthApi(controller *AuthController, cfg *config.Config, userService user.UserService) *AuthApi {
	return &AuthApi{
		controller:  controller,
		config:      cfg,
		userService: userService,
	}
}

// Setup registers auth routes
func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/login", h.controller.Login)

	authed := app.Group("/api/auth",
		middleware.AuthMiddleware(h.config.SkipAuth),
		user.RequireActive(h.userService))
	authed.Get("/me", h.controller.Me)
	authed.Post("/register", user.RequireAdmin(), h.controller.Register)
}
