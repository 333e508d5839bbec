package conversation

import (
	"strings"

	"perfume-advisor-be/pkg/filter"
	"perfume-advisor-be/pkg/questions"
	"perfume-advisor-be/pkg/textnorm"
)

type Terminal int

const (
	NotTerminal Terminal = iota
	// TerminalCandidates renders the current candidate list.
	TerminalCandidates
	// TerminalLookup renders the item named in the free-text lookup.
	TerminalLookup
)

// Route describes what happens when the conversation arrives at a question id.
// The answer that led there is applied under FilterKey, and the answers of the question
// being rendered are pruned under PruneKey.
type Route struct {
	FilterKey filter.Key
	Classify  filter.Classifier
	PruneKey  filter.Key
	Terminal  Terminal

	// InputListWhen attaches the brand/model list when the answer text contains it.
	InputListWhen string
}

// classifiers derive a filter value from answer text. The substring tests are
// case sensitive and follow the Romanian wording of the question document.
var classifiers = map[filter.Key]filter.Classifier{
	filter.TimeOfUse:    dayOrEvening,
	filter.TargetGender: womenOrMen,
}

func dayOrEvening(text string) string {
	if textnorm.IsDontKnow(text) {
		return text
	}
	if strings.Contains(text, "zi") {
		return "Zi"
	}
	return "Seara"
}

func womenOrMen(text string) string {
	if textnorm.IsDontKnow(text) {
		return text
	}
	if strings.Contains(text, "femei") {
		return "Dama"
	}
	return "Barbati"
}

func defaultRoutes() map[string]Route {
	scent := Route{FilterKey: filter.PrimaryScent, PruneKey: filter.SecondaryScent}

	return map[string]Route{
		"3.2.1": {InputListWhen: "Da"},
		"3.3":   {PruneKey: filter.TimeOfUse},
		"3.4":   {FilterKey: filter.TimeOfUse, Classify: classifiers[filter.TimeOfUse], PruneKey: filter.TargetGender},
		"3.5":   {FilterKey: filter.TargetGender, Classify: classifiers[filter.TargetGender], PruneKey: filter.PrimaryScent},
		"3.5.1": scent,
		"3.5.2": scent,
		"3.5.3": scent,
		"3.5.4": scent,
		"3.6":   {FilterKey: filter.SecondaryScent, PruneKey: filter.Intensity},

		questions.RecommendationID:         {FilterKey: filter.Intensity, Terminal: TerminalCandidates},
		questions.RecommendationModelBrand: {Terminal: TerminalLookup},
	}
}

// topicEntries maps a chat widget topic to its first question.
var topicEntries = map[string]string{
	"parfum":  "3.1",
	"comanda": "1.1",
	"magazin": "2.1",
}
