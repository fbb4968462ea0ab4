package state

import (
	"go-inspect/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type StateController struct {
	Service StateService
}

func NewStateController(service StateService) *StateController {
	return &StateController{Service: service}
}

func (ctrl *StateController) ListByMachineType(c *fiber.Ctx) error {
	states, err := ctrl.Service.ListByMachineType(c.Context(), c.Params("machineTypeId"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(states)
}

func (ctrl *StateController) Get(c *fiber.Ctx) error {
	st, err := ctrl.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(st)
}

func (ctrl *StateController) Create(c *fiber.Ctx) error {
	var input CreateStateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	st, err := ctrl.Service.Create(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(st)
}

func (ctrl *StateController) Update(c *fiber.Ctx) error {
	var patch StatePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	st, err := ctrl.Service.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(st)
}

func (ctrl *StateController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
