package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holamundo/internal/domain"
)

func cards(words ...string) []domain.VocabularyItem {
	out := make([]domain.VocabularyItem, len(words))
	for i, w := range words {
		out[i] = domain.VocabularyItem{Spanish: w, English: "en-" + w, POS: "noun"}
	}
	return out
}

func TestDeck_Navigation(t *testing.T) {
	d := NewDeck(cards("uno", "dos", "tres"))
	assert.Equal(t, DeckFront, d.State())

	same := d.Previous()
	assert.Equal(t, 0, same.Position(), "previous at first card is a no-op")

	d = d.Flip()
	assert.Equal(t, DeckBack, d.State())
	d = d.Next()
	assert.Equal(t, 1, d.Position())
	assert.False(t, d.Revealed(), "moving resets to front")

	d = d.Next().Flip()
	assert.Equal(t, 2, d.Position())
	last := d.Next()
	assert.Equal(t, 2, last.Position(), "next at last card is a no-op")
	assert.True(t, last.Revealed(), "no-op keeps reveal state")

	d = d.Previous()
	assert.Equal(t, 1, d.Position())
	assert.False(t, d.Revealed())
	card, idx, ok := d.Current()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "dos", card.Spanish)
}

func TestDeck_TransitionsDoNotMutateReceiver(t *testing.T) {
	d := NewDeck(cards("uno", "dos"))
	_ = d.Next()
	_ = d.Flip()
	_ = d.MarkKnown()
	assert.Equal(t, 0, d.Position())
	assert.False(t, d.Revealed())
	assert.Equal(t, 0, d.MasteredCount())
}

func TestDeck_MarkKnownKeepsPosition(t *testing.T) {
	d := NewDeck(cards("uno", "dos", "tres", "cuatro")).Next().Flip()
	d = d.MarkKnown()

	assert.Equal(t, []int{1}, d.Mastered())
	assert.Equal(t, []int{0, 2, 3}, d.Active())
	assert.Equal(t, 1, d.Position())
	assert.False(t, d.Revealed())
	card, idx, _ := d.Current()
	assert.Equal(t, 2, idx)
	assert.Equal(t, "tres", card.Spanish)
}

func TestDeck_MarkKnownAtEndClampsToStart(t *testing.T) {
	d := NewDeck(cards("uno", "dos", "tres")).Next().Next()
	d = d.MarkKnown()
	assert.Equal(t, 0, d.Position())
	_, idx, _ := d.Current()
	assert.Equal(t, 0, idx)
}

func TestDeck_AllMastered(t *testing.T) {
	const n = 5
	d := NewDeck(cards("a", "b", "c", "d", "e"))
	for i := 0; i < n; i++ {
		require.NotEqual(t, DeckAllMastered, d.State())
		d = d.MarkKnown()
	}
	assert.Equal(t, DeckAllMastered, d.State())
	assert.Equal(t, n, d.MasteredCount())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, d.Mastered())
	_, _, ok := d.Current()
	assert.False(t, ok)

	// terminal: further actions change nothing
	assert.Equal(t, d, d.MarkKnown())
	assert.Equal(t, d, d.Flip())
	assert.Equal(t, d, d.Next())
	assert.Equal(t, d, d.Previous())
}

func TestDeck_MasteredOnlyGrows(t *testing.T) {
	d := NewDeck(cards("a", "b", "c"))
	prev := 0
	for _, step := range []func(Deck) Deck{Deck.Next, Deck.MarkKnown, Deck.Previous, Deck.Flip, Deck.MarkKnown, Deck.Next} {
		d = step(d)
		assert.GreaterOrEqual(t, d.MasteredCount(), prev)
		prev = d.MasteredCount()
		if len(d.Active()) > 0 {
			assert.Less(t, d.Position(), len(d.Active()))
		}
	}
}

func TestDeck_Empty(t *testing.T) {
	d := NewDeck(nil)
	assert.Equal(t, DeckEmpty, d.State())
	assert.Equal(t, "empty", d.State().String())
	assert.Equal(t, d, d.Flip().Next().Previous().MarkKnown())
}
