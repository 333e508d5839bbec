package dto

import (
	"time"

	"perfume-advisor-be/pkg/conversation"
	"perfume-advisor-be/pkg/history"
)

type StartSessionRequest struct {
	Topic string `json:"topic" validate:"omitempty,max=32"`
	Tag   string `json:"tag" validate:"omitempty,max=128"`
}

type StartSessionResponse struct {
	SessionID string                   `json:"session_id"`
	Output    *conversation.NextOutput `json:"output"`
}

type LookupRequest struct {
	Brand string `json:"brand" validate:"omitempty,max=128"`
	Model string `json:"model" validate:"omitempty,max=128"`
	Text  string `json:"text" validate:"omitempty,max=256"`
}

type AnswerRequest struct {
	QuestionID string         `json:"question_id" validate:"required,max=64"`
	AnswerID   string         `json:"answer_id" validate:"required,max=64"`
	Selection  *LookupRequest `json:"selection" validate:"omitempty"`
}

// Lookup converts the optional selection for the state machine.
func (r *AnswerRequest) Lookup() *conversation.Lookup {
	if r.Selection == nil {
		return nil
	}
	return &conversation.Lookup{
		Brand: r.Selection.Brand,
		Model: r.Selection.Model,
		Text:  r.Selection.Text,
	}
}

type HistoryResponse struct {
	SessionID string          `json:"session_id"`
	Entries   []history.Entry `json:"entries"`
}

// SocketReply is one websocket frame sent back for an answer frame.
type SocketReply struct {
	Type    string                   `json:"type"`
	Output  *conversation.NextOutput `json:"output,omitempty"`
	Code    int                      `json:"code,omitempty"`
	Message string                   `json:"message,omitempty"`
}

// EventMessage is the wire form of an event on the in-process bus.
type EventMessage struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}
