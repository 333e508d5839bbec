package conversation

import (
	"encoding/json"

	"perfume-advisor-be/pkg/formatter"
	"perfume-advisor-be/pkg/questions"
)

// Built-in prompts used when the question document does not define the pseudo-questions.
const (
	ClosingText        = "Vă mulțumim pentru că ați ales serviciile noastre! Mai putem să vă ajutăm cu ceva?"
	NotInitializedText = "Sistemul nu a fost inițializat corect. Vă rugăm încercați din nou."
	NotUnderstoodText  = "Nu am înțeles întrebarea. Cum vă pot ajuta?"
	RecommendationText = "Vă recomandăm următoarele parfumuri:"
)

type AnswerOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type QuestionOutput struct {
	ID      string         `json:"id"`
	Text    string         `json:"text"`
	Answers []AnswerOption `json:"answers"`
}

type SystemOptions struct {
	OutputList []formatter.DisplayEntry `json:"output_list,omitempty"`
	InputList  []string                 `json:"input_list,omitempty"`

	// Document is the question's own system_options object. Its keys are emitted next to
	// output_list and input_list, which win on a clash.
	Document json.RawMessage `json:"-"`
}

func (o SystemOptions) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{})
	if len(o.Document) > 0 {
		var doc map[string]interface{}
		// documents that are not objects have no keys to merge
		if err := json.Unmarshal(o.Document, &doc); err == nil {
			for k, v := range doc {
				fields[k] = v
			}
		}
	}
	if len(o.OutputList) > 0 {
		fields["output_list"] = o.OutputList
	}
	if len(o.InputList) > 0 {
		fields["input_list"] = o.InputList
	}
	return json.Marshal(fields)
}

// NextOutput is what the chat widget renders after each step.
type NextOutput struct {
	Question      QuestionOutput `json:"question"`
	SystemOptions *SystemOptions `json:"system_options,omitempty"`
}

func questionOutput(id, text string, answers []questions.Answer) QuestionOutput {
	out := QuestionOutput{ID: id, Text: text, Answers: make([]AnswerOption, 0, len(answers))}
	for _, a := range answers {
		out.Answers = append(out.Answers, AnswerOption{ID: a.ID, Text: a.Text})
	}
	return out
}
