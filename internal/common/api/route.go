package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature Api type and collected into an fx
// group so main can register them all.
type Route interface {
	Setup(app *fiber.App)
}
