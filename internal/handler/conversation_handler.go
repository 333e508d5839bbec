package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"perfume-advisor-be/internal/controller"
	"perfume-advisor-be/internal/dto"
	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/internal/pkg/serverutils"
	"perfume-advisor-be/internal/service"
	internalWS "perfume-advisor-be/internal/websocket"
)

const (
	ReplyNext  = "next"
	ReplyError = "error"
)

// ConversationHandler serves the websocket variant of the answer endpoint.
type ConversationHandler struct {
	service service.IAdvisorService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewConversationHandler(service service.IAdvisorService, hub *internalWS.Hub, log logger.ILogger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		hub:     hub,
		logger:  log,
	}
}

// ServeWs upgrades the request once the session is known to exist.
func (h *ConversationHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if err := h.service.Exists(c.UserContext(), sessionID); err != nil {
		return err
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("WS", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(context.Background(), h.hub, conn, sessionID, h.Respond)
			h.logger.Info("WS", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Respond handles one answer frame. Accepted answers are shared with every open tab of
// the session so they stay on the same question; errors go back to the sender only.
func (h *ConversationHandler) Respond(ctx context.Context, sessionID string, frame []byte) ([]byte, bool) {
	var req dto.AnswerRequest
	if err := json.Unmarshal(frame, &req); err != nil {
		return h.encode(dto.SocketReply{Type: ReplyError, Code: fiber.StatusBadRequest, Message: "Invalid frame"}), false
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return h.errorReply(err), false
	}

	out, err := h.service.Answer(ctx, sessionID, &req)
	if err != nil {
		return h.errorReply(err), false
	}
	return h.encode(dto.SocketReply{Type: ReplyNext, Output: out}), true
}

func (h *ConversationHandler) errorReply(err error) []byte {
	code := serverutils.StatusFor(err, controller.ErrorStatuses)
	message := err.Error()
	if code == fiber.StatusInternalServerError {
		h.logger.Error("WS", "Answer failed", map[string]interface{}{"error": message})
		message = "internal server error"
	}

	var validationErr *serverutils.ValidationError
	if errors.As(err, &validationErr) {
		message = validationErr.Error()
	}
	return h.encode(dto.SocketReply{Type: ReplyError, Code: code, Message: message})
}

func (h *ConversationHandler) encode(reply dto.SocketReply) []byte {
	data, err := json.Marshal(reply)
	if err != nil {
		h.logger.Error("WS", "Failed to encode reply", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return data
}

func (h *ConversationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/advisor/v1/ws/:id", h.ServeWs)
}
