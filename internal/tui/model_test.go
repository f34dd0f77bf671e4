package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/result"
	"holamundo/internal/study"
)

type fakeFeedback struct{ sentences, answers int }

func (f *fakeFeedback) SentenceFeedback(_ context.Context, sentence, word, _ string, _ bool) (string, error) {
	f.sentences++
	return "bien: " + word, nil
}

func (f *fakeFeedback) ComprehensionFeedback(_ context.Context, _, answer, _, _ string, _ bool) (string, error) {
	f.answers++
	return "correcto", nil
}

func newTestModel(t *testing.T, fb Feedbacker) Model {
	t.Helper()
	entries := result.DecodeAll(map[string]string{
		"vocabulary": `{"vocabulary":[{"spanish":"correr","english":"to run","pos":"verb","example":"Me gusta correr."},{"spanish":"parque","english":"park","pos":"noun"}]}`,
		"questions":  `{"questions":[{"question":"¿Qué?","answer":"Correr.","difficulty":"beginner"}]}`,
	})
	m := New(context.Background(), fb, study.NewSession(entries, "B1", true, nil), "Resumen.", "# guide")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestFlashcardKeys(t *testing.T) {
	m := newTestModel(t, &fakeFeedback{})
	assert.Contains(t, m.View(), "correr")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.Equal(t, study.DeckBack, m.Session().Deck.State())
	assert.Contains(t, m.View(), "to run")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	card, idx, ok := m.Session().Deck.Current()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "parque", card.Spanish)
	assert.Equal(t, study.DeckFront, m.Session().Deck.State())

	m, _ = press(t, m, runes("k"), runes("k"))
	assert.Equal(t, study.DeckAllMastered, m.Session().Deck.State())
	assert.Contains(t, m.View(), "All 2 words mastered.")
}

func TestPracticeRunsFeedbackAsCommand(t *testing.T) {
	fb := &fakeFeedback{}
	m := newTestModel(t, fb)

	m, _ = press(t, m, runes("p"), runes("Corro."))
	require.True(t, m.editing)
	assert.Zero(t, fb.sentences)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	next, _ := m.Update(cmd())
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Equal(t, 1, fb.sentences)
	assert.Equal(t, "Corro.", m.Session().Practice.LastSentence)
	assert.Equal(t, "bien: correr", m.Session().Practice.LastFeedback.OrEmpty())
}

func TestComprehensionTab(t *testing.T) {
	fb := &fakeFeedback{}
	m := newTestModel(t, fb)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "[beginner] ¿Qué?")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("Correr"), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	m = next.(Model)

	a, ok := m.Session().Comprehension.Answer(0)
	require.True(t, ok)
	assert.Equal(t, "Correr", a)
	assert.Equal(t, 1, fb.answers)
	assert.Contains(t, m.View(), "correcto")
}

func TestEscCancelsEditing(t *testing.T) {
	fb := &fakeFeedback{}
	m := newTestModel(t, fb)
	m, cmd := press(t, m, runes("p"), runes("x"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.editing)
	assert.Nil(t, cmd)
	assert.Zero(t, fb.sentences)
}

func TestHighlightWord(t *testing.T) {
	out := highlightWord("Me gusta correr.", "correr")
	assert.Contains(t, out, "Me gusta ")
	assert.Contains(t, out, "correr")
	assert.Equal(t, "sin cambios", highlightWord("sin cambios", ""))
}
