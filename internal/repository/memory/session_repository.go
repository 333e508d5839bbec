package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"perfume-advisor-be/pkg/conversation"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps sessions for ttl after their last save and purges
// expired ones every cleanup interval.
func NewSessionRepository(ttl, cleanup time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SessionRepository) Save(_ context.Context, session *conversation.Session) error {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, sessionID string) (*conversation.Session, bool, error) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*conversation.Session), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(_ context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
