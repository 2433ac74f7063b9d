// internal/cards/cards.go
package cards

import "math/rand"

// Card identifies one of the 40 cards in a Spanish deck. Ids run 1 through
// 40, ten cards per suit: 1-10 Oros, 11-20 Copas, 21-30 Espadas, 31-40
// Bastos. Cards are immutable values; all derivation is arithmetic on the id.
type Card int

// DeckSize is the number of distinct cards in the deck.
const DeckSize = 40

var suitNames = [4]string{"Oros", "Copas", "Espadas", "Bastos"}

// Value returns the card's game value, 1 through 10.
func Value(c Card) int {
	return (int(c)-1)%10 + 1
}

// Suit returns the suit index, 0 through 3, in id order.
func Suit(c Card) int {
	return (int(c) - 1) / 10
}

// SuitName returns the Spanish suit name for the card.
func SuitName(c Card) string {
	return suitNames[Suit(c)]
}

// IsOros reports whether the card belongs to the coin suit (ids 1-10).
func IsOros(c Card) bool {
	return c >= 1 && c <= 10
}

// IsSettebello reports whether the card is the seven of coins, the single
// card worth a fixed bonus when captured.
func IsSettebello(c Card) bool {
	return c == 7
}

// NewDeck returns the full 40-card deck in id order.
func NewDeck() []Card {
	deck := make([]Card, DeckSize)
	for i := range deck {
		deck[i] = Card(i + 1)
	}
	return deck
}

// Shuffle permutes the deck in place.
func Shuffle(deck []Card) {
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
