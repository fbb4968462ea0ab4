package user

import (
	"go-inspect/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "currentUser"

// RequireActive resolves the authenticated account and rejects inactive
// ones. The loaded user is stored in Locals for controllers and policy
// checks. Must run after the JWT middleware.
func RequireActive(service UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok || claims == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		u, err := service.Get(c.Context(), claims.UserID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Could not validate credentials",
			})
		}
		if !u.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Inactive user",
			})
		}

		c.Locals(currentUserKey, u)
		return c.Next()
	}
}

// RequireAdmin gates catalog mutation routes. Must run after RequireActive.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if !u.IsAdministrator() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: administrator role required",
			})
		}
		return c.Next()
	}
}

// RequireMechanic gates report and detail writes. Must run after RequireActive.
func RequireMechanic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}
		if !u.IsMechanic() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: mechanic role required",
			})
		}
		return c.Next()
	}
}

// CurrentUser returns the account loaded by RequireActive, or nil.
func CurrentUser(c *fiber.Ctx) *User {
	u, _ := c.Locals(currentUserKey).(*User)
	return u
}
