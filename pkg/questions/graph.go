// Package questions holds the static question graph the advisor walks through.
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Pseudo-question ids that do not need to exist in the document.
const (
	EndID                    = "end"
	RecommendationID         = "recommendation"
	RecommendationModelBrand = "recommendation_model_brand"

	// WildcardAnswerID matches any answer id the question does not list.
	WildcardAnswerID = "*"
)

var (
	ErrEmptyGraph  = errors.New("question graph has no questions")
	ErrMissingRoot = errors.New("question graph has no root question")
)

// Answer is one selectable option of a question.
type Answer struct {
	ID             string `json:"id" yaml:"id"`
	Text           string `json:"text" yaml:"text"`
	NextQuestionID string `json:"next_question" yaml:"nextQuestion"`
}

// Question is a prompt with its answers in document order.
type Question struct {
	ID            string          `json:"id"`
	Text          string          `json:"text"`
	Answers       []Answer        `json:"answers"`
	SystemOptions json.RawMessage `json:"system_options,omitempty"`
}

// Answer returns the answer with the given id, falling back to the wildcard answer.
func (q *Question) Answer(id string) (Answer, bool) {
	var wildcard *Answer
	for i := range q.Answers {
		if q.Answers[i].ID == id {
			return q.Answers[i], true
		}
		if q.Answers[i].ID == WildcardAnswerID {
			wildcard = &q.Answers[i]
		}
	}
	if wildcard != nil {
		return *wildcard, true
	}
	return Answer{}, false
}

// Graph is immutable once parsed and safe for concurrent reads.
type Graph struct {
	order     []string
	questions map[string]*Question
}

func newGraph() *Graph {
	return &Graph{questions: make(map[string]*Question)}
}

func (g *Graph) add(q *Question) {
	if _, exists := g.questions[q.ID]; !exists {
		g.order = append(g.order, q.ID)
	}
	g.questions[q.ID] = q
}

// Question looks up a question by id.
func (g *Graph) Question(id string) (*Question, bool) {
	q, ok := g.questions[id]
	return q, ok
}

// IDs returns question ids in document order.
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

func (g *Graph) Len() int {
	return len(g.order)
}

// Validate checks that root exists and returns the answers pointing at unknown questions.
// Dangling targets are reported, not rejected: the pseudo-questions are allowed to be absent.
func (g *Graph) Validate(root string) ([]string, error) {
	if g.Len() == 0 {
		return nil, ErrEmptyGraph
	}
	if _, ok := g.questions[root]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingRoot, root)
	}

	var dangling []string
	for _, id := range g.order {
		for _, a := range g.questions[id].Answers {
			next := a.NextQuestionID
			if next == "" || isPseudo(next) {
				continue
			}
			if _, ok := g.questions[next]; !ok {
				dangling = append(dangling, fmt.Sprintf("%s/%s -> %s", id, a.ID, next))
			}
		}
	}
	return dangling, nil
}

func isPseudo(id string) bool {
	return id == EndID || id == RecommendationID || id == RecommendationModelBrand
}

// LoadFile reads a JSON or YAML question document.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read questions %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}
