package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"perfume-advisor-be/pkg/conversation"
	"perfume-advisor-be/pkg/history"
)

const keyPrefix = "advisor:session:"

// SessionRepository stores session snapshots in Redis. Loading a session replays its
// filters against the in-memory catalog, so any instance can serve any session.
type SessionRepository struct {
	rdb     *goredis.Client
	advisor *conversation.Advisor
	sinks   []history.Sink
	ttl     time.Duration
}

func NewSessionRepository(rdb *goredis.Client, advisor *conversation.Advisor, ttl time.Duration, sinks ...history.Sink) *SessionRepository {
	return &SessionRepository{
		rdb:     rdb,
		advisor: advisor,
		sinks:   sinks,
		ttl:     ttl,
	}
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (r *SessionRepository) Save(ctx context.Context, session *conversation.Session) error {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	if err := r.rdb.Set(ctx, key(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*conversation.Session, bool, error) {
	data, err := r.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var snap conversation.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}

	session, err := r.advisor.RestoreSession(snap, r.sinks...)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, key(sessionID)).Err()
}
