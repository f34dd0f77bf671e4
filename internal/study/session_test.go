package study

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/domain"
	"holamundo/internal/result"
)

func testEntries() []result.Entry {
	return result.DecodeAll(domain.GenerationResult{
		"vocabulary": `{"vocabulary":[{"spanish":"correr","english":"to run","pos":"verb"},{"spanish":"parque","english":"park","pos":"noun"}]}`,
		"questions":  `{"questions":[{"question":"q1","answer":"a1","difficulty":"intermediate"},{"question":"q2","answer":"a2","difficulty":"beginner"}]}`,
	})
}

func TestNewSession(t *testing.T) {
	s := NewSession(testEntries(), "B1", true, nil)
	assert.Equal(t, 2, s.Deck.Total())
	require.Len(t, s.Comprehension.Questions, 2)
	assert.Equal(t, "q2", s.Comprehension.Questions[0].Question, "beginner tier first")
	assert.Equal(t, 0, s.Practice.CardIndex)
	assert.False(t, s.Practice.LastFeedback.IsPresent())
}

func TestNewSession_MalformedVocabularyGivesEmptyDeck(t *testing.T) {
	entries := result.DecodeAll(domain.GenerationResult{"vocabulary": "oops"})
	s := NewSession(entries, "A2", false, nil)
	assert.Equal(t, DeckEmpty, s.Deck.State())
	assert.Empty(t, s.Comprehension.Questions)
	assert.Equal(t, -1, s.Practice.CardIndex)
}

func TestSession_PracticeResetsOnCardChange(t *testing.T) {
	fb := &recordingFeedback{}
	s := NewSession(testEntries(), "B1", true, nil)

	s, err := s.PracticeSentence(context.Background(), fb, "Me gusta correr.")
	require.NoError(t, err)
	assert.Equal(t, "Me gusta correr.|correr", fb.calls[0])
	assert.Equal(t, "Me gusta correr.", s.Practice.LastSentence)
	assert.Equal(t, "nice: Me gusta correr.", s.Practice.LastFeedback.OrEmpty())

	flipped := s.WithDeck(s.Deck.Flip())
	assert.Equal(t, "Me gusta correr.", flipped.Practice.LastSentence, "same card keeps practice")

	moved := s.WithDeck(s.Deck.Next())
	assert.Equal(t, 1, moved.Practice.CardIndex)
	assert.Empty(t, moved.Practice.LastSentence)
	assert.False(t, moved.Practice.LastFeedback.IsPresent())

	_, err = moved.PracticeSentence(context.Background(), fb, " ")
	assert.Error(t, err)
}

func TestSession_AnswerQuestion(t *testing.T) {
	fb := &recordingFeedback{}
	s := NewSession(testEntries(), "C1", true, nil)
	s, err := s.AnswerQuestion(context.Background(), fb, 1, "respuesta")
	require.NoError(t, err)
	f, ok := s.Comprehension.Feedback(1)
	require.True(t, ok)
	assert.Equal(t, "feedback for respuesta", f)
	assert.Equal(t, "q1|respuesta|a1|C1", fb.calls[0])
}
