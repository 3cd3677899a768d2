package helper

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"dormitory_backend/internals/helpers/apperr"
)

// FromServiceError menerjemahkan error dari service layer ke response JSON konsisten.
// Error tanpa kind dianggap 500 dan dicatat.
func FromServiceError(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindNotFound:
			return JsonErrorCode(c, fiber.StatusNotFound, "NOT_FOUND", ae.Message)
		case apperr.KindConflict:
			return JsonErrorCode(c, fiber.StatusConflict, "CONFLICT", ae.Message)
		case apperr.KindInvalidState:
			return JsonErrorCode(c, fiber.StatusConflict, "INVALID_STATE", ae.Message)
		case apperr.KindValidation:
			return JsonErrorCode(c, fiber.StatusUnprocessableEntity, "VALIDATION_ERROR", ae.Message)
		}
	}
	return FromFiberError(c, err)
}

// FromFiberError: *fiber.Error dipakai apa adanya, selain itu 500.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	logrus.WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"reqid":  c.Locals("reqid"),
	}).WithError(err).Error("unhandled error")
	return JsonError(c, fiber.StatusInternalServerError, "internal server error")
}

// ErrorHandler dipasang di fiber.Config supaya error yang lolos dari handler tetap JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromServiceError(c, err)
}

// NewValidator: validator.v10 yang melaporkan nama field sesuai tag json.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}
