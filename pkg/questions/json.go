package questions

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Parse reads the JSON question document. Object key order is kept, which a plain
// map[string]... decode would lose.
func Parse(data []byte) (*Graph, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid question document: not valid JSON")
	}

	root := gjson.GetBytes(data, "questions")
	if !root.Exists() || !root.IsObject() {
		return nil, fmt.Errorf("invalid question document: %w", ErrEmptyGraph)
	}

	g := newGraph()
	var parseErr error
	root.ForEach(func(id, body gjson.Result) bool {
		q, err := parseQuestion(id.String(), body)
		if err != nil {
			parseErr = err
			return false
		}
		g.add(q)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if g.Len() == 0 {
		return nil, ErrEmptyGraph
	}
	return g, nil
}

func parseQuestion(id string, body gjson.Result) (*Question, error) {
	if !body.IsObject() {
		return nil, fmt.Errorf("question %s: expected an object", id)
	}

	q := &Question{
		ID:   id,
		Text: body.Get("text").String(),
	}

	answers := body.Get("answers")
	if answers.Exists() && !answers.IsObject() {
		return nil, fmt.Errorf("question %s: answers must be an object", id)
	}
	answers.ForEach(func(answerID, a gjson.Result) bool {
		next := a.Get("nextQuestion")
		q.Answers = append(q.Answers, Answer{
			ID:             answerID.String(),
			Text:           a.Get("text").String(),
			NextQuestionID: nextID(next),
		})
		return true
	})

	if opts := body.Get("system_options"); opts.Exists() {
		q.SystemOptions = json.RawMessage(opts.Raw)
	}
	return q, nil
}

// nextID treats null like "end", as the conversation closes on both.
func nextID(next gjson.Result) string {
	if !next.Exists() || next.Type == gjson.Null {
		return EndID
	}
	return next.String()
}
