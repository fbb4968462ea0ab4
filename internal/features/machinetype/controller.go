package machinetype

import (
	"strconv"

	"go-inspect/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type MachineTypeController struct {
	Service MachineTypeService
}

func NewMachineTypeController(service MachineTypeService) *MachineTypeController {
	return &MachineTypeController{Service: service}
}

func (ctrl *MachineTypeController) List(c *fiber.Ctx) error {
	skip, _ := strconv.ParseInt(c.Query("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)

	types, err := ctrl.Service.List(c.Context(), skip, limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(types)
}

func (ctrl *MachineTypeController) Get(c *fiber.Ctx) error {
	mt, err := ctrl.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(mt)
}

func (ctrl *MachineTypeController) Create(c *fiber.Ctx) error {
	var input CreateMachineTypeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	mt, err := ctrl.Service.Create(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(mt)
}

func (ctrl *MachineTypeController) Update(c *fiber.Ctx) error {
	var patch MachineTypePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	mt, err := ctrl.Service.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(mt)
}

func (ctrl *MachineTypeController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
