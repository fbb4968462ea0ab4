package checklist

import (
	"strconv"

	"go-inspect/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type ChecklistController struct {
	Service ChecklistService
}

func NewChecklistController(service ChecklistService) *ChecklistController {
	return &ChecklistController{Service: service}
}

func (ctrl *ChecklistController) List(c *fiber.Ctx) error {
	skip, _ := strconv.ParseInt(c.Query("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)

	checklists, err := ctrl.Service.List(c.Context(), skip, limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(checklists)
}

func (ctrl *ChecklistController) ListByMachineType(c *fiber.Ctx) error {
	skip, _ := strconv.ParseInt(c.Query("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "100"), 10, 64)

	checklists, err := ctrl.Service.ListActiveByMachineType(c.Context(), c.Params("machineTypeId"), skip, limit)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(checklists)
}

func (ctrl *ChecklistController) Get(c *fiber.Ctx) error {
	cl, err := ctrl.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cl)
}

func (ctrl *ChecklistController) GetWithGroups(c *fiber.Ctx) error {
	cl, err := ctrl.Service.GetWithGroups(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cl)
}

func (ctrl *ChecklistController) Create(c *fiber.Ctx) error {
	var input CreateChecklistInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cl, err := ctrl.Service.Create(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(cl)
}

func (ctrl *ChecklistController) Update(c *fiber.Ctx) error {
	var patch ChecklistPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	cl, err := ctrl.Service.Update(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cl)
}

func (ctrl *ChecklistController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (ctrl *ChecklistController) CreateGroup(c *fiber.Ctx) error {
	var input CreateGroupInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	g, err := ctrl.Service.CreateGroup(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(g)
}

func (ctrl *ChecklistController) UpdateGroup(c *fiber.Ctx) error {
	var patch GroupPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	g, err := ctrl.Service.UpdateGroup(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(g)
}

func (ctrl *ChecklistController) DeleteGroup(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteGroup(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (ctrl *ChecklistController) CreateItem(c *fiber.Ctx) error {
	var input CreateItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	it, err := ctrl.Service.CreateItem(c.Context(), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(it)
}

func (ctrl *ChecklistController) UpdateItem(c *fiber.Ctx) error {
	var patch ItemPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	it, err := ctrl.Service.UpdateItem(c.Context(), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(it)
}

func (ctrl *ChecklistController) DeleteItem(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteItem(c.Context(), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
