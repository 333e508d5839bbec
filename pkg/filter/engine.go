package filter

import (
	"strings"

	"perfume-advisor-be/pkg/catalog"
	"perfume-advisor-be/pkg/questions"
	"perfume-advisor-be/pkg/textnorm"
)

// Classifier turns an answer text into the value that is applied as a filter.
// A nil Classifier applies the answer text unchanged.
type Classifier func(answerText string) string

// Engine owns the filters and the shrinking candidate list of a single session.
// It is not safe for concurrent use.
type Engine struct {
	catalog    []catalog.Item
	filters    Set
	candidates []catalog.Item
}

// NewEngine starts with every item of the catalog as a candidate. The catalog slice is shared
// and never modified.
func NewEngine(items []catalog.Item) *Engine {
	e := &Engine{catalog: items}
	e.Reset()
	return e
}

// ApplyFilter narrows the candidates and returns how many remain.
// Empty values are ignored; "nu stiu" is recorded but does not narrow.
func (e *Engine) ApplyFilter(key Key, value string) int {
	if strings.TrimSpace(value) == "" {
		return len(e.candidates)
	}

	e.filters = append(e.filters, Criterion{Key: key, Value: value})
	if !constraining(value) {
		return len(e.candidates)
	}

	kept := make([]catalog.Item, 0, len(e.candidates))
	for _, item := range e.candidates {
		if Matches(item, key, value) {
			kept = append(kept, item)
		}
	}
	e.candidates = kept
	return len(e.candidates)
}

// Candidates returns a copy of the current candidate list.
func (e *Engine) Candidates() []catalog.Item {
	out := make([]catalog.Item, len(e.candidates))
	copy(out, e.candidates)
	return out
}

// Filters returns a copy of the filters applied so far, in order.
func (e *Engine) Filters() Set {
	out := make(Set, len(e.filters))
	copy(out, e.filters)
	return out
}

// Catalog returns the items the engine was built from.
func (e *Engine) Catalog() []catalog.Item {
	return e.catalog
}

// Reset drops every filter and restores the full catalog.
func (e *Engine) Reset() {
	e.filters = nil
	e.candidates = make([]catalog.Item, len(e.catalog))
	copy(e.candidates, e.catalog)
}

// Replay resets the engine and applies filters in order.
func (e *Engine) Replay(filters Set) {
	e.Reset()
	for _, c := range filters {
		e.ApplyFilter(c.Key, c.Value)
	}
}

// PruneAnswerOptions keeps the answers of q that would leave at least one candidate if applied
// under key. "Don't know" answers and the catch-all answer are always kept. When no answer
// survives, every answer is returned so the question is never a dead end; the walk then ends
// in the fallback recommendation.
func (e *Engine) PruneAnswerOptions(q *questions.Question, key Key, classify Classifier) []questions.Answer {
	if q == nil {
		return nil
	}

	kept := make([]questions.Answer, 0, len(q.Answers))
	for _, a := range q.Answers {
		if a.ID == questions.WildcardAnswerID || textnorm.IsDontKnow(a.Text) {
			kept = append(kept, a)
			continue
		}

		value := a.Text
		if classify != nil {
			value = classify(a.Text)
		}
		if e.anyMatch(key, value) {
			kept = append(kept, a)
		}
	}

	if len(kept) == 0 {
		return append(kept, q.Answers...)
	}
	return kept
}

func (e *Engine) anyMatch(key Key, value string) bool {
	for _, item := range e.candidates {
		if Matches(item, key, value) {
			return true
		}
	}
	return false
}
