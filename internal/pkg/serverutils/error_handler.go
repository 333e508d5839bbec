package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorStatus maps a sentinel error to the HTTP status it is reported with.
type ErrorStatus struct {
	Err    error
	Status int
}

// StatusFor resolves the status of err: fiber errors keep their code, validation
// errors are 422, mapped sentinels use their status, anything else is 500.
func StatusFor(err error, statuses []ErrorStatus) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusUnprocessableEntity
	}

	for _, s := range statuses {
		if errors.Is(err, s.Err) {
			return s.Status
		}
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware turns handler errors into the JSON envelope.
func ErrorHandlerMiddleware(statuses ...ErrorStatus) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusFor(err, statuses)
		res := ErrorResponse(code, err.Error())

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			res.Data = validationErr.Fields
		}
		if code == fiber.StatusInternalServerError {
			res.Message = "internal server error"
		}
		return ctx.Status(code).JSON(res)
	}
}
