package questions

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML reads the same document shape as Parse, written as YAML.
// Mapping order is read from the node tree so answers keep their authored order.
func ParseYAML(data []byte) (*Graph, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid question document: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, ErrEmptyGraph
	}

	questionsNode := mappingValue(doc.Content[0], "questions")
	if questionsNode == nil || questionsNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid question document: %w", ErrEmptyGraph)
	}

	g := newGraph()
	for i := 0; i+1 < len(questionsNode.Content); i += 2 {
		id := questionsNode.Content[i].Value
		body := questionsNode.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("question %s: expected a mapping", id)
		}

		q := &Question{ID: id}
		if text := mappingValue(body, "text"); text != nil {
			q.Text = text.Value
		}

		if answers := mappingValue(body, "answers"); answers != nil {
			if answers.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("question %s: answers must be a mapping", id)
			}
			for j := 0; j+1 < len(answers.Content); j += 2 {
				a := answers.Content[j+1]
				answer := Answer{ID: answers.Content[j].Value, NextQuestionID: EndID}
				if text := mappingValue(a, "text"); text != nil {
					answer.Text = text.Value
				}
				if next := mappingValue(a, "nextQuestion"); next != nil && next.Tag != "!!null" {
					answer.NextQuestionID = next.Value
				}
				q.Answers = append(q.Answers, answer)
			}
		}

		if opts := mappingValue(body, "system_options"); opts != nil {
			var decoded interface{}
			if err := opts.Decode(&decoded); err != nil {
				return nil, fmt.Errorf("question %s: system_options: %w", id, err)
			}
			raw, err := json.Marshal(decoded)
			if err != nil {
				return nil, fmt.Errorf("question %s: system_options: %w", id, err)
			}
			q.SystemOptions = raw
		}

		g.add(q)
	}

	if g.Len() == 0 {
		return nil, ErrEmptyGraph
	}
	return g, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
