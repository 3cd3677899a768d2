package controller

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/model"
	"dormitory_backend/internals/features/housing/service"
	helper "dormitory_backend/internals/helpers"
)

type ApplicationController struct {
	Svc      *service.HousingService
	Validate *validator.Validate
}

func NewApplicationController(svc *service.HousingService) *ApplicationController {
	return &ApplicationController{Svc: svc, Validate: helper.NewValidator()}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "id tidak valid")
	}
	return id, nil
}

// GET /staff/applications?page=&per_page= (alias skip/limit)
func (ctrl *ApplicationController) List(c *fiber.Ctx) error {
	p := helper.ResolvePaging(c, 20, 100)

	items, total, err := ctrl.Svc.ListApplications(c.UserContext(), p.Offset, p.Limit)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	pg := helper.BuildPaginationFromOffset(total, p.Offset, p.Limit)
	return helper.JsonList(c, "Applications", items, &pg)
}

// PUT /staff/applications/:id/status
func (ctrl *ApplicationController) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.UpdateStatus(c.UserContext(), id, req.Status, req.RejectionReason)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Application status updated", out)
}

// PUT /staff/applications/:id/allocate
func (ctrl *ApplicationController) Allocate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.AllocateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.ReassignRoom(c.UserContext(), id, req.RoomID)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Room allocated", out)
}

// GET /staff/applications/available_rooms
func (ctrl *ApplicationController) AvailableRooms(c *fiber.Ctx) error {
	rooms, err := ctrl.Svc.AvailableRooms(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "Available rooms", rooms, nil)
}

// POST /staff/applications/process_auto
func (ctrl *ApplicationController) ProcessAuto(c *fiber.Ctx) error {
	out, err := ctrl.Svc.AutoProcess(c.UserContext(), model.TriggerManual)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Auto-processing finished", out)
}
