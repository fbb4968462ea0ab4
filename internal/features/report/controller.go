package report

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/user"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

func (ctrl *ReportController) List(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.ParseInt(c.Query("page_size", "25"), 10, 64)
	if pageSize < 1 || pageSize > 200 {
		pageSize = 25
	}

	filter := ListFilter{
		OwnerID:       c.Query("owner_id"),
		MachineID:     c.Query("machine_id"),
		MachineTypeID: c.Query("machine_type_id"),
		Status:        Status(c.Query("status")),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from date, expected YYYY-MM-DD"})
		}
		filter.FromDate = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to date, expected YYYY-MM-DD"})
		}
		// Inclusive upper bound covering the whole day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &t
	}

	rows, total, err := ctrl.Service.List(c.Context(), user.CurrentUser(c), filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	return c.JSON(fiber.Map{
		"data":        rows,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	})
}

func (ctrl *ReportController) Get(c *fiber.Ctx) error {
	rep, err := ctrl.Service.Get(c.Context(), user.CurrentUser(c), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}

func (ctrl *ReportController) GetFull(c *fiber.Ctx) error {
	rep, err := ctrl.Service.GetWithRelations(c.Context(), user.CurrentUser(c), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}

func (ctrl *ReportController) Create(c *fiber.Ctx) error {
	var input CreateReportInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rep, err := ctrl.Service.Create(c.Context(), user.CurrentUser(c), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(rep)
}

func (ctrl *ReportController) Update(c *fiber.Ctx) error {
	var patch ReportPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	rep, err := ctrl.Service.Update(c.Context(), user.CurrentUser(c), c.Params("id"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}

func (ctrl *ReportController) Finalize(c *fiber.Ctx) error {
	rep, err := ctrl.Service.Finalize(c.Context(), user.CurrentUser(c), c.Params("id"))
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) && e.Kind == apperr.KindIncompleteChecklist {
			return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
				"error":         e.Message,
				"missing_items": e.MissingItems,
			})
		}
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rep)
}

func (ctrl *ReportController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), user.CurrentUser(c), c.Params("id")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (ctrl *ReportController) AddDetail(c *fiber.Ctx) error {
	var input DetailInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	input.ReportID = c.Params("id")

	detail, err := ctrl.Service.AddDetail(c.Context(), user.CurrentUser(c), input)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(detail)
}

func (ctrl *ReportController) AddDetailsBatch(c *fiber.Ctx) error {
	var request struct {
		Details []BatchDetailEntry `json:"details"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := ctrl.Service.AddDetailsBatch(c.Context(), user.CurrentUser(c), c.Params("id"), request.Details)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(result)
}

func (ctrl *ReportController) UpdateDetail(c *fiber.Ctx) error {
	var patch DetailPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	detail, err := ctrl.Service.UpdateDetail(c.Context(), user.CurrentUser(c), c.Params("detailId"), patch)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(detail)
}

func (ctrl *ReportController) DeleteDetail(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteDetail(c.Context(), user.CurrentUser(c), c.Params("detailId")); err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (ctrl *ReportController) GroupedDetails(c *fiber.Ctx) error {
	grouped, err := ctrl.Service.GroupedDetails(c.Context(), user.CurrentUser(c), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(grouped)
}

func (ctrl *ReportController) ExportPDF(c *fiber.Ctx) error {
	export, err := ctrl.Service.ExportPDF(c.Context(), user.CurrentUser(c), c.Params("id"))
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(export)
}

func (ctrl *ReportController) ExportXLSX(c *fiber.Ctx) error {
	filter := ListFilter{
		OwnerID:       c.Query("owner_id"),
		MachineID:     c.Query("machine_id"),
		MachineTypeID: c.Query("machine_type_id"),
		Status:        Status(c.Query("status")),
	}

	data, filename, err := ctrl.Service.ExportXLSX(c.Context(), user.CurrentUser(c), filter)
	if err != nil {
		return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(data)
}
