package controller

import (
	"github.com/gofiber/fiber/v2"

	"perfume-advisor-be/internal/pkg/serverutils"
	"perfume-advisor-be/internal/service"
	"perfume-advisor-be/pkg/conversation"
)

// ErrorStatuses maps advisor errors to the status they are reported with.
var ErrorStatuses = []serverutils.ErrorStatus{
	{Err: conversation.ErrUnknownQuestion, Status: fiber.StatusBadRequest},
	{Err: conversation.ErrUnknownAnswer, Status: fiber.StatusBadRequest},
	{Err: service.ErrSessionNotFound, Status: fiber.StatusNotFound},
	{Err: conversation.ErrNotInitialized, Status: fiber.StatusServiceUnavailable},
}
