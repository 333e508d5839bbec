package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"perfume-advisor-be/pkg/catalog"
	"perfume-advisor-be/pkg/filter"
	"perfume-advisor-be/pkg/history"
	"perfume-advisor-be/pkg/questions"
)

// Lookup is the brand/model the user typed at the search step. Brand and Model are
// matched against the catalog columns; Text against the "Brand Model" label.
type Lookup struct {
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Snapshot is the serializable state of a session.
type Snapshot struct {
	ID                string          `json:"id"`
	Tag               string          `json:"tag,omitempty"`
	CurrentQuestionID string          `json:"current_question_id"`
	Filters           filter.Set      `json:"filters"`
	History           []history.Entry `json:"history"`
}

// Session is one user's conversation. It is not safe for concurrent use.
type Session struct {
	ID  string
	Tag string

	current string
	data    *dataset
	engine  *filter.Engine
	history *history.Recorder
	now     func() time.Time
}

func (s *Session) CurrentQuestionID() string {
	return s.current
}

func (s *Session) Filters() filter.Set {
	return s.engine.Filters()
}

func (s *Session) Candidates() []catalog.Item {
	return s.engine.Candidates()
}

// History returns the answered questions. A non-empty tag keeps only entries with that tag.
func (s *Session) History(tag string) []history.Entry {
	return s.history.Entries(tag)
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:                s.ID,
		Tag:               s.Tag,
		CurrentQuestionID: s.current,
		Filters:           s.engine.Filters(),
		History:           s.history.Entries(""),
	}
}

// Advance records the answer to questionID and moves to the question it leads to.
// Nothing is changed when the question or the answer is unknown.
func (s *Session) Advance(ctx context.Context, questionID, answerID string, lookup *Lookup) (*NextOutput, error) {
	question, ok := s.data.graph.Question(questionID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	answer, ok := question.Answer(answerID)
	if !ok {
		return nil, fmt.Errorf("%w: %q for question %q", ErrUnknownAnswer, answerID, questionID)
	}

	s.history.Append(ctx, history.Entry{
		SessionID:    s.ID,
		Tag:          s.Tag,
		Timestamp:    s.now().UTC(),
		QuestionID:   questionID,
		QuestionText: question.Text,
		AnswerID:     answerID,
		AnswerText:   answer.Text,
	})

	s.current = answer.NextQuestionID
	return s.dispatch(answer, lookup), nil
}

func (s *Session) dispatch(answer questions.Answer, lookup *Lookup) *NextOutput {
	route := s.data.routes[s.current]

	if route.FilterKey != "" {
		value := answer.Text
		if route.Classify != nil {
			value = route.Classify(answer.Text)
		}
		s.engine.ApplyFilter(route.FilterKey, value)
	}

	out := &NextOutput{Question: s.render(s.current, route.PruneKey)}

	switch route.Terminal {
	case TerminalCandidates:
		out.SystemOptions = &SystemOptions{OutputList: s.data.formatter.Format(s.engine.Candidates())}
	case TerminalLookup:
		out.SystemOptions = &SystemOptions{OutputList: s.data.formatter.Format(s.lookup(lookup))}
	}

	if route.InputListWhen != "" && strings.Contains(answer.Text, route.InputListWhen) {
		list := make([]string, len(s.data.brandModels))
		copy(list, s.data.brandModels)
		out.SystemOptions = &SystemOptions{InputList: list}
	}
	return s.withDocumentOptions(out)
}

// withDocumentOptions attaches the system_options the question document defines for the
// rendered question.
func (s *Session) withDocumentOptions(out *NextOutput) *NextOutput {
	q, ok := s.data.graph.Question(out.Question.ID)
	if !ok || len(q.SystemOptions) == 0 {
		return out
	}
	if out.SystemOptions == nil {
		out.SystemOptions = &SystemOptions{}
	}
	out.SystemOptions.Document = q.SystemOptions
	return out
}

// render builds the question view for id. Pseudo-questions missing from the document get
// built-in text; any other missing id gets the "not understood" prompt.
func (s *Session) render(id string, pruneKey filter.Key) QuestionOutput {
	q, ok := s.data.graph.Question(id)

	if id == questions.EndID {
		text := ClosingText
		if ok && q.Text != "" {
			text = q.Text
		}
		return questionOutput(id, text, nil)
	}

	if !ok {
		switch id {
		case questions.RecommendationID, questions.RecommendationModelBrand:
			return questionOutput(id, RecommendationText, nil)
		default:
			return questionOutput(id, NotUnderstoodText, nil)
		}
	}

	answers := q.Answers
	if pruneKey != "" {
		answers = s.engine.PruneAnswerOptions(q, pruneKey, classifiers[pruneKey])
	}
	return questionOutput(q.ID, q.Text, answers)
}

func (s *Session) lookup(l *Lookup) []catalog.Item {
	if l == nil {
		return nil
	}
	if l.Brand != "" && l.Model != "" {
		if item, ok := catalog.FindByBrandModel(s.data.catalog, l.Brand, l.Model); ok {
			return []catalog.Item{item}
		}
	}
	if l.Text != "" {
		if item, ok := catalog.FindByLabel(s.data.catalog, l.Text); ok {
			return []catalog.Item{item}
		}
	}
	return nil
}

// Restart goes back to the root question with no filters and no history.
func (s *Session) Restart() *NextOutput {
	s.current = s.data.root
	s.history.Clear()
	s.engine.Reset()
	return s.withDocumentOptions(&NextOutput{Question: s.render(s.current, "")})
}

// Start renders the entry question of topic. Unknown topics, and topics whose entry
// question is not in the document, start at the root.
func (s *Session) Start(topic string) *NextOutput {
	id := s.data.root
	if entry, ok := topicEntries[strings.ToLower(strings.TrimSpace(topic))]; ok {
		if _, exists := s.data.graph.Question(entry); exists {
			id = entry
		}
	}
	s.current = id
	return s.withDocumentOptions(&NextOutput{Question: s.render(id, "")})
}
