package contract

import (
	"context"

	"perfume-advisor-be/pkg/conversation"
)

// SessionRepository keeps conversations between requests. Sessions expire after the
// store's TTL; nothing outlives it.
type SessionRepository interface {
	Save(ctx context.Context, session *conversation.Session) error
	Get(ctx context.Context, sessionID string) (*conversation.Session, bool, error)
	Delete(ctx context.Context, sessionID string) error
}
