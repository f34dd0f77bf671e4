package study

import (
	"holamundo/internal/domain"
)

// DeckState is the observable state of a flashcard deck.
type DeckState int

const (
	// DeckEmpty means the deck was built without any cards.
	DeckEmpty DeckState = iota
	// DeckFront shows the Spanish side of the current card.
	DeckFront
	// DeckBack shows translation, part of speech and example.
	DeckBack
	// DeckAllMastered is terminal: every card was marked known.
	DeckAllMastered
)

func (s DeckState) String() string {
	switch s {
	case DeckFront:
		return "front"
	case DeckBack:
		return "back"
	case DeckAllMastered:
		return "all_mastered"
	default:
		return "empty"
	}
}

// Deck is an immutable flashcard deck state. Every transition returns a new
// Deck; the receiver is never modified.
//
// Position indexes the active view, the cards not yet mastered, in original
// order. It is always valid unless the active view is empty.
type Deck struct {
	cards    []domain.VocabularyItem
	position int
	revealed bool
	mastered map[int]struct{}
}

// NewDeck starts a fresh deck at the first card, front side up.
func NewDeck(cards []domain.VocabularyItem) Deck {
	cp := make([]domain.VocabularyItem, len(cards))
	copy(cp, cards)
	return Deck{cards: cp, mastered: map[int]struct{}{}}
}

func (d Deck) Cards() []domain.VocabularyItem { return d.cards }
func (d Deck) Position() int                  { return d.position }
func (d Deck) Revealed() bool                 { return d.revealed }
func (d Deck) Total() int                     { return len(d.cards) }
func (d Deck) MasteredCount() int             { return len(d.mastered) }

// IsMastered reports whether the card at original index i was marked known.
func (d Deck) IsMastered(i int) bool {
	_, ok := d.mastered[i]
	return ok
}

// Mastered returns the mastered original indices in ascending order.
func (d Deck) Mastered() []int {
	out := make([]int, 0, len(d.mastered))
	for i := range d.cards {
		if d.IsMastered(i) {
			out = append(out, i)
		}
	}
	return out
}

// Active returns the original indices of the cards still being studied.
func (d Deck) Active() []int {
	out := make([]int, 0, len(d.cards)-len(d.mastered))
	for i := range d.cards {
		if !d.IsMastered(i) {
			out = append(out, i)
		}
	}
	return out
}

func (d Deck) State() DeckState {
	switch {
	case len(d.cards) == 0:
		return DeckEmpty
	case len(d.mastered) >= len(d.cards):
		return DeckAllMastered
	case d.revealed:
		return DeckBack
	default:
		return DeckFront
	}
}

// Current returns the displayed card and its original index.
func (d Deck) Current() (domain.VocabularyItem, int, bool) {
	active := d.Active()
	if len(active) == 0 {
		return domain.VocabularyItem{}, -1, false
	}
	idx := active[d.position]
	return d.cards[idx], idx, true
}

// Flip toggles between the front and back of the current card.
func (d Deck) Flip() Deck {
	if len(d.Active()) == 0 {
		return d
	}
	d.revealed = !d.revealed
	return d
}

// Next moves one card forward. It is a no-op on the last card.
func (d Deck) Next() Deck {
	if d.position+1 >= len(d.Active()) {
		return d
	}
	d.position++
	d.revealed = false
	return d
}

// Previous moves one card back. It is a no-op on the first card.
func (d Deck) Previous() Deck {
	if d.position == 0 || len(d.Active()) == 0 {
		return d
	}
	d.position--
	d.revealed = false
	return d
}

// MarkKnown masters the current card. The position stays put so the next
// unmastered card slides in; past the end it resets to the first card.
func (d Deck) MarkKnown() Deck {
	_, idx, ok := d.Current()
	if !ok {
		return d
	}
	mastered := make(map[int]struct{}, len(d.mastered)+1)
	for k := range d.mastered {
		mastered[k] = struct{}{}
	}
	mastered[idx] = struct{}{}
	d.mastered = mastered
	d.revealed = false
	if d.position >= len(d.Active()) {
		d.position = 0
	}
	return d
}
