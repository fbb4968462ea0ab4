package user

import (
	"strconv"

	"go-inspect/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

func (ctrl *UserController) List(c *fiber.Ctx) error {
	skip, _ := strconv.ParseInt(c.Query("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)

	users, err := ctrl.Service.List(c.Context(), skip, limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(users)
}

func (ctrl *UserController) Get(c *fiber.Ctx) error {
	caller := CurrentUser(c)
	id := c.Params("id")
	if caller != nil && !caller.IsAdministrator() && caller.ID.Hex() != id {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "you can only view your own account"})
	}

	u, err := ctrl.Service.Get(c.Context(), id)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(u)
}

func (ctrl *UserController) Create(c *fiber.Ctx) error {
	var input CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	u, err := ctrl.Service.Create(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (ctrl *UserController) Update(c *fiber.Ctx) error {
	var patch UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	u, err := ctrl.Service.Update(c.Context(), c.Params("id"), patch, CurrentUser(c))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(u)
}

func (ctrl *UserController) Deactivate(c *fiber.Ctx) error {
	u, err := ctrl.Service.Deactivate(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(u)
}
