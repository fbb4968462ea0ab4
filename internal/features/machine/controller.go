package machine

import (
	"strconv"

	"go-inspect/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type MachineController struct {
	Service MachineService
}

func NewMachineController(service MachineService) *MachineController {
	return &MachineController{Service: service}
}

func (ctrl *MachineController) List(c *fiber.Ctx) error {
	skip, _ := strconv.ParseInt(c.Query("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)
	machineTypeID := c.Query("machine_type_id")

	machines, err := ctrl.Service.List(c.Context(), machineTypeID, skip, limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(machines)
}

func (ctrl *MachineController) Get(c *fiber.Ctx) error {
	m, err := ctrl.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(m)
}

func (ctrl *MachineController) Create(c *fiber.Ctx) error {
	var input CreateMachineInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	m, err := ctrl.Service.Create(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (ctrl *MachineController) Update(c *fiber.Ctx) error {
	var patch MachinePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	m, err := ctrl.Service.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(m)
}

func (ctrl *MachineController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
