package study

import "github.com/samber/mo"

// Practice is the free-text sentence practice for the displayed card.
type Practice struct {
	CardIndex    int
	LastSentence string
	LastFeedback mo.Option[string]
}

// NewPractice starts an empty practice for the card at original index card.
func NewPractice(card int) Practice {
	return Practice{CardIndex: card, LastFeedback: mo.None[string]()}
}

// ForCard keeps the practice when card is still displayed and starts a
// fresh one otherwise.
func (p Practice) ForCard(card int) Practice {
	if p.CardIndex == card {
		return p
	}
	return NewPractice(card)
}

// Record stores a submitted sentence and its feedback.
func (p Practice) Record(sentence, feedback string) Practice {
	p.LastSentence = sentence
	p.LastFeedback = mo.Some(feedback)
	return p
}
