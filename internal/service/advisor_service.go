package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"perfume-advisor-be/internal/dto"
	"perfume-advisor-be/internal/pkg/logger"
	"perfume-advisor-be/internal/repository/contract"
	"perfume-advisor-be/pkg/conversation"
	"perfume-advisor-be/pkg/events"
	"perfume-advisor-be/pkg/history"
)

var ErrSessionNotFound = errors.New("session not found")

const lockStripes = 64

type IAdvisorService interface {
	StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	Answer(ctx context.Context, sessionID string, req *dto.AnswerRequest) (*conversation.NextOutput, error)
	Restart(ctx context.Context, sessionID string) (*conversation.NextOutput, error)
	History(ctx context.Context, sessionID, tag string) (*dto.HistoryResponse, error)
	BrandModels(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, sessionID string) error
	Ready() bool
}

type advisorService struct {
	advisor        *conversation.Advisor
	repo           contract.SessionRepository
	sinks          []history.Sink
	eventPublisher events.Publisher
	logger         logger.ILogger

	// calls on one session are serialized; unrelated sessions may share a stripe
	locks [lockStripes]sync.Mutex
}

func NewAdvisorService(
	advisor *conversation.Advisor,
	repo contract.SessionRepository,
	eventPublisher events.Publisher,
	log logger.ILogger,
	sinks ...history.Sink,
) IAdvisorService {
	return &advisorService{
		advisor:        advisor,
		repo:           repo,
		sinks:          sinks,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *advisorService) lock(sessionID string) func() {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *advisorService) Ready() bool {
	return s.advisor.Ready()
}

func (s *advisorService) StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	session, err := s.advisor.NewSession(uuid.NewString(), req.Tag, s.sinks...)
	if err != nil {
		return nil, err
	}

	out := session.Start(req.Topic)
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeSessionStarted, session, map[string]interface{}{"topic": req.Topic})
	s.logger.Info("ADVISOR", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"topic":      req.Topic,
		"question":   out.Question.ID,
	})

	return &dto.StartSessionResponse{SessionID: session.ID, Output: out}, nil
}

func (s *advisorService) Answer(ctx context.Context, sessionID string, req *dto.AnswerRequest) (*conversation.NextOutput, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out, err := session.Advance(ctx, req.QuestionID, req.AnswerID, req.Lookup())
	if err != nil {
		s.logger.Warn("ADVISOR", "Answer rejected", map[string]interface{}{
			"session_id":  sessionID,
			"question_id": req.QuestionID,
			"answer_id":   req.AnswerID,
			"error":       err.Error(),
		})
		return nil, err
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *advisorService) Restart(ctx context.Context, sessionID string) (*conversation.NextOutput, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	out := session.Restart()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeSessionReset, session, nil)
	return out, nil
}

func (s *advisorService) History(ctx context.Context, sessionID, tag string) (*dto.HistoryResponse, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.HistoryResponse{SessionID: sessionID, Entries: session.History(tag)}, nil
}

// Exists returns ErrSessionNotFound for ids the store does not know.
func (s *advisorService) Exists(ctx context.Context, sessionID string) error {
	_, err := s.load(ctx, sessionID)
	return err
}

func (s *advisorService) BrandModels(_ context.Context) ([]string, error) {
	return s.advisor.BrandModels()
}

func (s *advisorService) load(ctx context.Context, sessionID string) (*conversation.Session, error) {
	if !s.advisor.Ready() {
		return nil, conversation.ErrNotInitialized
	}
	session, found, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *advisorService) publish(ctx context.Context, eventType string, session *conversation.Session, extra map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}

	data := map[string]interface{}{
		"session_id": session.ID,
		"tag":        session.Tag,
	}
	for k, v := range extra {
		data[k] = v
	}

	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ADVISOR", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
