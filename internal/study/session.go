package study

import (
	"context"
	"fmt"
	"strings"

	"holamundo/internal/result"
)

// SentenceFeedbacker generates feedback on a practice sentence.
type SentenceFeedbacker interface {
	SentenceFeedback(ctx context.Context, sentence, targetWord, level string, testMode bool) (string, error)
}

// Session is the learner state for one generation run. A new run always
// starts a new Session.
type Session struct {
	Level         string
	TestMode      bool
	Deck          Deck
	Practice      Practice
	Comprehension Comprehension
}

// NewSession builds a session from decoded results. Missing or malformed
// vocabulary gives an empty deck; missing questions give no comprehension.
func NewSession(entries []result.Entry, level string, testMode bool, tiers []string) Session {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	s := Session{Level: level, TestMode: testMode}
	if e, ok := result.Find(entries, result.KindVocabulary); ok && e.Vocabulary != nil {
		s.Deck = NewDeck(e.Vocabulary.Vocabulary)
	} else {
		s.Deck = NewDeck(nil)
	}
	if e, ok := result.Find(entries, result.KindQuestions); ok && e.Questions != nil {
		s.Comprehension = NewComprehension(SelectQuestions(e.Questions.Questions, tiers))
	} else {
		s.Comprehension = NewComprehension(nil)
	}
	s.Practice = NewPractice(s.currentCard())
	return s
}

func (s Session) currentCard() int {
	_, idx, _ := s.Deck.Current()
	return idx
}

// WithDeck applies a deck transition and resets practice when the card changes.
func (s Session) WithDeck(d Deck) Session {
	s.Deck = d
	s.Practice = s.Practice.ForCard(s.currentCard())
	return s
}

// PracticeSentence gets feedback on sentence for the current card.
func (s Session) PracticeSentence(ctx context.Context, fb SentenceFeedbacker, sentence string) (Session, error) {
	card, _, ok := s.Deck.Current()
	if !ok {
		return s, fmt.Errorf("no card to practice")
	}
	if strings.TrimSpace(sentence) == "" {
		return s, fmt.Errorf("sentence is empty")
	}
	text, err := fb.SentenceFeedback(ctx, sentence, card.Spanish, s.Level, s.TestMode)
	if err != nil {
		return s, err
	}
	s.Practice = s.Practice.ForCard(s.currentCard()).Record(sentence, text)
	return s, nil
}

// AnswerQuestion gets feedback on answer for selected question i.
func (s Session) AnswerQuestion(ctx context.Context, fb ComprehensionFeedbacker, i int, answer string) (Session, error) {
	c, err := s.Comprehension.Submit(ctx, fb, i, answer, s.Level, s.TestMode)
	if err != nil {
		return s, err
	}
	s.Comprehension = c
	return s, nil
}
