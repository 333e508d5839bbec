package conversation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-advisor-be/pkg/catalog"
	"perfume-advisor-be/pkg/formatter"
	"perfume-advisor-be/pkg/history"
	"perfume-advisor-be/pkg/questions"
)

const catalogSize = 8

func newTestAdvisor(t *testing.T) *Advisor {
	t.Helper()
	a := NewAdvisor(Config{
		CatalogPath:   "testdata/parfumuri.csv",
		QuestionsPath: "testdata/questions.json",
	})
	require.NoError(t, a.Initialize(context.Background()))
	return a
}

func newTestSession(t *testing.T, sinks ...history.Sink) *Session {
	t.Helper()
	s, err := newTestAdvisor(t).NewSession("s1", "ana", sinks...)
	require.NoError(t, err)
	return s
}

func answerIDs(q QuestionOutput) []string {
	ids := make([]string, 0, len(q.Answers))
	for _, a := range q.Answers {
		ids = append(ids, a.ID)
	}
	return ids
}

func advance(t *testing.T, s *Session, questionID, answerID string) *NextOutput {
	t.Helper()
	out, err := s.Advance(context.Background(), questionID, answerID, nil)
	require.NoError(t, err)
	return out
}

func TestAdvisor_NotInitialized(t *testing.T) {
	a := NewAdvisor(Config{})
	assert.False(t, a.Ready())

	_, err := a.NewSession("s1", "")
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = a.BrandModels()
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = a.RestoreSession(Snapshot{ID: "s1"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAdvisor_InitializeErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing catalog", cfg: Config{CatalogPath: "testdata/missing.csv", QuestionsPath: "testdata/questions.json"}},
		{name: "missing questions", cfg: Config{CatalogPath: "testdata/parfumuri.csv", QuestionsPath: "testdata/missing.json"}},
		{name: "missing root", cfg: Config{CatalogPath: "testdata/parfumuri.csv", QuestionsPath: "testdata/questions.json", RootQuestionID: "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdvisor(tt.cfg)
			assert.Error(t, a.Initialize(context.Background()))
			assert.False(t, a.Ready())
		})
	}
}

func TestSession_EveningWomenFlow(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, "1", s.CurrentQuestionID())

	out := advance(t, s, "1", "1")
	assert.Equal(t, "3.1", out.Question.ID)
	assert.Nil(t, out.SystemOptions)

	out = advance(t, s, "3.1", "2")
	assert.Equal(t, "3.3", out.Question.ID)

	out = advance(t, s, "3.3", "2")
	assert.Equal(t, "3.4", out.Question.ID)
	assert.Equal(t, []string{"1", "2"}, answerIDs(out.Question))

	out = advance(t, s, "3.4", "1")
	assert.Equal(t, "3.5", out.Question.ID)
	// no evening perfume for women is woody
	assert.Equal(t, []string{"1", "3", "4"}, answerIDs(out.Question))

	out = advance(t, s, "3.5", "1")
	assert.Equal(t, "3.5.1", out.Question.ID)
	assert.Equal(t, []string{"1", "2", "4"}, answerIDs(out.Question))

	out = advance(t, s, "3.5.1", "1")
	assert.Equal(t, "3.6", out.Question.ID)
	assert.Equal(t, []string{"2", "4"}, answerIDs(out.Question))

	out = advance(t, s, "3.6", "2")
	assert.Equal(t, questions.RecommendationID, out.Question.ID)
	assert.Equal(t, "Vă recomandăm următoarele parfumuri:", out.Question.Text)
	require.NotNil(t, out.SystemOptions)

	list := out.SystemOptions.OutputList
	require.NotEmpty(t, list)
	links := make(map[string]bool)
	for _, e := range list {
		assert.False(t, links[e.Link], "duplicate link %s", e.Link)
		links[e.Link] = true
	}
	assert.Equal(t, []formatter.DisplayEntry{
		{Name: "DP F21 - Armani Si", Link: "https://www.dpparfum.ro/produs/f21", PictureLink: "https://cdn.example.ro/f21.webp"},
		{Name: "DP A33 - Lattafa Khamrah arabian", Link: "https://www.dpparfum.ro/produs/a33-arabian/", PictureLink: "https://cdn.example.ro/a33.webp"},
	}, list)

	for _, item := range s.Candidates() {
		assert.True(t, strings.EqualFold(item.TimeOfUse, "Seara"))
		assert.Contains(t, []string{"dama", "unisex"}, strings.ToLower(item.TargetGender))
		assert.Contains(t, item.PrimaryScent, "Floral")
		assert.Contains(t, item.PrimaryScent, "Fructat")
		assert.Equal(t, "Medie", item.Intensity)
	}

	assert.Len(t, s.History(""), 7)
	v, _ := s.Filters().Get("timeOfUse")
	assert.Equal(t, "Seara", v)
	v, _ = s.Filters().Get("targetGender")
	assert.Equal(t, "Dama", v)

	out = advance(t, s, questions.RecommendationID, "1")
	assert.Equal(t, questions.EndID, out.Question.ID)
	assert.Equal(t, "Vă mulțumim pentru vizită!", out.Question.Text)
	assert.Empty(t, out.Question.Answers)
}

func TestSession_DontKnowBypassesFilters(t *testing.T) {
	s := newTestSession(t)
	s.current = "3.3"

	advance(t, s, "3.3", "1")
	advance(t, s, "3.4", "2")
	advance(t, s, "3.5", "4")
	advance(t, s, "3.5.4", "1")
	out := advance(t, s, "3.6", "4")

	// day, men or unisex, no further narrowing
	require.NotNil(t, out.SystemOptions)
	names := make([]string, 0)
	for _, e := range out.SystemOptions.OutputList {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"DP B12 - Dior Sauvage", "DP U07 - CK One"}, names)
}

func TestSession_UnknownQuestionLeavesStateUntouched(t *testing.T) {
	s := newTestSession(t)
	advance(t, s, "1", "1")

	_, err := s.Advance(context.Background(), "9.9", "1", nil)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Len(t, s.History(""), 1)
	assert.Equal(t, "3.1", s.CurrentQuestionID())

	_, err = s.Advance(context.Background(), "3.1", "7", nil)
	assert.ErrorIs(t, err, ErrUnknownAnswer)
	assert.Len(t, s.History(""), 1)
	assert.Equal(t, "3.1", s.CurrentQuestionID())
}

func TestSession_WildcardAnswer(t *testing.T) {
	s := newTestSession(t)

	out := advance(t, s, "2.1", "cluj")
	assert.Equal(t, questions.EndID, out.Question.ID)

	entries := s.History("")
	require.Len(t, entries, 1)
	assert.Equal(t, "cluj", entries[0].AnswerID)
	assert.Equal(t, "Alt oraș", entries[0].AnswerText)
}

func TestSession_NullNextQuestionEnds(t *testing.T) {
	s := newTestSession(t)
	out := advance(t, s, "1.1", "2")
	assert.Equal(t, questions.EndID, out.Question.ID)
}

func TestSession_BrandModelLookup(t *testing.T) {
	s := newTestSession(t)

	out := advance(t, s, "3.1", "1")
	assert.Equal(t, "3.2.1", out.Question.ID)
	require.NotNil(t, out.SystemOptions)
	assert.Len(t, out.SystemOptions.InputList, catalogSize)
	assert.Contains(t, out.SystemOptions.InputList, "Dior Sauvage")

	tests := []struct {
		name   string
		lookup *Lookup
		want   string
	}{
		{name: "brand and model", lookup: &Lookup{Brand: "dior", Model: "SAUVAGE"}, want: "DP B12 - Dior Sauvage"},
		{name: "typed label", lookup: &Lookup{Text: "Armani Si Intense"}, want: "DP F21 - Armani Si Intense"},
		{name: "no match", lookup: &Lookup{Brand: "Dior", Model: "Fahrenheit"}, want: formatter.DefaultFallbackName},
		{name: "no lookup", lookup: nil, want: formatter.DefaultFallbackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := s.Advance(context.Background(), "3.2.1", "1", tt.lookup)
			require.NoError(t, err)
			assert.Equal(t, questions.RecommendationModelBrand, out.Question.ID)
			require.NotNil(t, out.SystemOptions)
			require.Len(t, out.SystemOptions.OutputList, 1)
			assert.Equal(t, tt.want, out.SystemOptions.OutputList[0].Name)
		})
	}
}

func TestSession_Restart(t *testing.T) {
	s := newTestSession(t)
	advance(t, s, "1", "1")
	advance(t, s, "3.1", "2")
	advance(t, s, "3.3", "1")
	advance(t, s, "3.4", "2")
	require.Less(t, len(s.Candidates()), catalogSize)

	out := s.Restart()
	assert.Equal(t, "1", out.Question.ID)
	assert.Equal(t, []string{"1", "2", "3"}, answerIDs(out.Question))
	assert.Equal(t, "1", s.CurrentQuestionID())
	assert.Empty(t, s.History(""))
	assert.Empty(t, s.Filters())
	assert.Len(t, s.Candidates(), catalogSize)
}

func TestSession_Start(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{topic: "parfum", want: "3.1"},
		{topic: "comanda", want: "1.1"},
		{topic: " Magazin ", want: "2.1"},
		{topic: "", want: "1"},
		{topic: "altceva", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			s := newTestSession(t)
			out := s.Start(tt.topic)
			assert.Equal(t, tt.want, out.Question.ID)
			assert.Equal(t, tt.want, s.CurrentQuestionID())
		})
	}
}

func TestSession_HistoryTagAndSinks(t *testing.T) {
	sink := &recordingSink{}
	s := newTestSession(t, sink)

	advance(t, s, "1", "1")
	advance(t, s, "3.1", "2")

	entries := s.History("ana")
	require.Len(t, entries, 2)
	assert.Equal(t, "Bună ziua! Cu ce vă putem ajuta?", entries[0].QuestionText)
	assert.Equal(t, "Recomandare parfum", entries[0].AnswerText)
	assert.Equal(t, "s1", entries[0].SessionID)
	assert.False(t, entries[0].Timestamp.IsZero())
	assert.Empty(t, s.History("ion"))
	assert.Len(t, sink.entries, 2)
}

func TestSession_BuiltInPrompts(t *testing.T) {
	graph, err := questions.Parse([]byte(`{
		"questions": {
			"1": {"text": "Start", "answers": {
				"1": {"text": "Gata", "nextQuestion": "end"},
				"2": {"text": "Recomandă", "nextQuestion": "recommendation"},
				"3": {"text": "Mai departe", "nextQuestion": "7"}
			}}
		}
	}`))
	require.NoError(t, err)

	a := NewAdvisor(Config{})
	require.NoError(t, a.Publish([]catalog.Item{{CanonicalName: "DP B12 - Dior Sauvage"}}, graph))

	tests := []struct {
		answer string
		id     string
		text   string
	}{
		{answer: "1", id: questions.EndID, text: ClosingText},
		{answer: "2", id: questions.RecommendationID, text: RecommendationText},
		{answer: "3", id: "7", text: NotUnderstoodText},
	}

	for _, tt := range tests {
		s, err := a.NewSession("s", "")
		require.NoError(t, err)
		out := advance(t, s, "1", tt.answer)
		assert.Equal(t, tt.id, out.Question.ID)
		assert.Equal(t, tt.text, out.Question.Text)
		assert.Empty(t, out.Question.Answers)
	}
}

func TestSession_SnapshotRestore(t *testing.T) {
	a := newTestAdvisor(t)
	s, err := a.NewSession("s1", "ana")
	require.NoError(t, err)
	advance(t, s, "1", "1")
	advance(t, s, "3.1", "2")
	advance(t, s, "3.3", "2")
	advance(t, s, "3.4", "1")

	restored, err := a.RestoreSession(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, s.CurrentQuestionID(), restored.CurrentQuestionID())
	assert.Equal(t, s.Candidates(), restored.Candidates())
	assert.Equal(t, s.Filters(), restored.Filters())
	assert.Equal(t, s.History(""), restored.History(""))

	fromOriginal := advance(t, s, "3.5", "1")
	fromRestored := advance(t, restored, "3.5", "1")
	assert.Equal(t, fromOriginal, fromRestored)
}

func TestAdvisor_DedupByModel(t *testing.T) {
	data, err := os.ReadFile("testdata/parfumuri.csv")
	require.NoError(t, err)
	data = append(data, []byte("Dior,sauvage,DP B13 - Dior Sauvage Elixir,Seara,Barbati,Lemnos,Condimentat,Puternica,https://cdn.example.ro/b13.webp\n")...)

	path := filepath.Join(t.TempDir(), "parfumuri.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	for _, tt := range []struct {
		dedup bool
		want  int
	}{
		{dedup: false, want: catalogSize + 1},
		{dedup: true, want: catalogSize},
	} {
		a := NewAdvisor(Config{
			CatalogPath:   path,
			QuestionsPath: "testdata/questions.json",
			DedupByModel:  tt.dedup,
		})
		require.NoError(t, a.Initialize(context.Background()))

		models, err := a.BrandModels()
		require.NoError(t, err)
		assert.Len(t, models, tt.want)
	}
}

type recordingSink struct {
	entries []history.Entry
}

func (r *recordingSink) Record(_ context.Context, e history.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestSession_NeverRendersDeadEnd(t *testing.T) {
	items, _, err := catalog.LoadFile("testdata/parfumuri.csv", catalog.Options{})
	require.NoError(t, err)
	graph, err := questions.LoadFile("testdata/questions.json")
	require.NoError(t, err)

	dayOnly := make([]catalog.Item, 0)
	for _, item := range items {
		if item.TimeOfUse == "Zi" {
			dayOnly = append(dayOnly, item)
		}
	}
	require.NotEmpty(t, dayOnly)

	a := NewAdvisor(Config{})
	require.NoError(t, a.Publish(dayOnly, graph))
	s, err := a.NewSession("s1", "")
	require.NoError(t, err)

	advance(t, s, "1", "1")
	out := advance(t, s, "3.1", "2")
	assert.Equal(t, "3.3", out.Question.ID)
	// only day perfumes are left, so the evening answer is not offered
	assert.Equal(t, []string{"1"}, answerIDs(out.Question))

	// a client that still sends the evening answer empties the candidates
	out = advance(t, s, "3.3", "2")
	assert.Equal(t, "3.4", out.Question.ID)
	assert.Empty(t, s.Candidates())
	assert.Equal(t, []string{"1", "2"}, answerIDs(out.Question))
}

func TestSession_DocumentSystemOptions(t *testing.T) {
	s := newTestSession(t)

	out := advance(t, s, "3.1", "1")
	require.Equal(t, "3.2.1", out.Question.ID)
	require.NotNil(t, out.SystemOptions)
	assert.JSONEq(t, `{"input":"search"}`, string(out.SystemOptions.Document))

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded struct {
		SystemOptions map[string]interface{} `json:"system_options"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "search", decoded.SystemOptions["input"])
	assert.Len(t, decoded.SystemOptions["input_list"], catalogSize)

	// questions without document options keep system_options out of the output
	out = s.Restart()
	assert.Nil(t, out.SystemOptions)
	data, err = json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "system_options")
}

func TestSystemOptions_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		opts     SystemOptions
		expected string
	}{
		{name: "lists only", opts: SystemOptions{InputList: []string{"Dior Sauvage"}}, expected: `{"input_list":["Dior Sauvage"]}`},
		{name: "document only", opts: SystemOptions{Document: json.RawMessage(`{"input":"search","limit":10}`)}, expected: `{"input":"search","limit":10}`},
		{name: "lists win on clash", opts: SystemOptions{InputList: []string{"a"}, Document: json.RawMessage(`{"input_list":["b"],"input":"search"}`)}, expected: `{"input":"search","input_list":["a"]}`},
		{name: "non-object document", opts: SystemOptions{Document: json.RawMessage(`"search"`)}, expected: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.opts)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}
