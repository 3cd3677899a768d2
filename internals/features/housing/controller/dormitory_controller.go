package controller

import (
	"bytes"
	"io"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"dormitory_backend/internals/features/housing/dto"
	"dormitory_backend/internals/features/housing/service"
	helper "dormitory_backend/internals/helpers"
)

const maxImportSize = 5 << 20

type DormitoryController struct {
	Svc      *service.HousingService
	Validate *validator.Validate
}

func NewDormitoryController(svc *service.HousingService) *DormitoryController {
	return &DormitoryController{Svc: svc, Validate: helper.NewValidator()}
}

// GET /staff/dormitories
func (ctrl *DormitoryController) List(c *fiber.Ctx) error {
	list, err := ctrl.Svc.ListDormitories(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonList(c, "Dormitories", list, nil)
}

// POST /staff/dormitories
func (ctrl *DormitoryController) Create(c *fiber.Ctx) error {
	var req dto.CreateDormitoryRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.CreateDormitory(c.UserContext(), req.Name, req.Address)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonCreated(c, "Dormitory created", out)
}

// DELETE /staff/dormitories/:id
func (ctrl *DormitoryController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if err := ctrl.Svc.DeleteDormitory(c.UserContext(), id); err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonDeleted(c, "Dormitory deleted", fiber.Map{"dormitory_id": id})
}

// POST /staff/dormitories/:id/structure
func (ctrl *DormitoryController) ReplaceRooms(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	var req dto.ReplaceRoomsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctrl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.ReplaceRooms(c.UserContext(), id, req.Rooms)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonUpdated(c, "Dormitory structure replaced", out)
}

// GET /staff/dormitories/:id/details
func (ctrl *DormitoryController) Details(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	out, err := ctrl.Svc.DormitoryDetails(c.UserContext(), id)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Dormitory details", out)
}

// GET /staff/dormitories/structure/export
func (ctrl *DormitoryController) Export(c *fiber.Ctx) error {
	out, err := ctrl.Svc.ExportStructure(c.UserContext())
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	if c.Query("download") != "" {
		c.Attachment("dormitory_structure.json")
		return c.JSON(out)
	}
	return helper.JsonOK(c, "Dormitory structure", out)
}

// POST /staff/dormitories/structure/import
// Menerima multipart field "file" atau raw JSON body.
func (ctrl *DormitoryController) Import(c *fiber.Ctx) error {
	raw, err := importPayload(c)
	if err != nil {
		return helper.FromServiceError(c, err)
	}

	var payload dto.DormitoryStructureExport
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return helper.JsonErrorCode(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid JSON: "+err.Error())
	}
	if err := ctrl.Validate.Struct(&payload); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := ctrl.Svc.ImportStructure(c.UserContext(), payload)
	if err != nil {
		return helper.FromServiceError(c, err)
	}
	return helper.JsonOK(c, "Dormitory structure imported", out)
}

func importPayload(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxImportSize {
			return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "file terlalu besar")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "file tidak bisa dibaca")
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImportSize))
	}

	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "file atau body JSON wajib diisi")
	}
	return body, nil
}
