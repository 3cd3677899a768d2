package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/service"
	helper "dormitory_backend/internals/helpers"
)

type StudentController struct {
	Svc      *service.HousingService
	Validate *validator.Validate
}

func NewStudentController(svc *service.HousingService) *StudentController {
	return &StudentController{Svc: svc, Validate: helper.NewValidator()}
}

// POST /student/applications
func (ctrl *StudentController) SubmitApplication(c *fiber.Ctx) error {
	var req dto.CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.SubmitApplication(c.UserContext(), req.StudentTicketNumber, req.LastName)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Application submitted", out)
}

// POST /student/applications/status_by_details
func (ctrl *StudentController) StatusByDetails(c *fiber.Ctx) error {
	var req dto.StatusCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.StatusByStudent(c.UserContext(), req.StudentTicketNumber, req.LastName)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Application status", out)
}
