// internal/cards/catalog.go
package cards

import "fmt"

// Info describes a single card for the static catalog endpoint.
type Info struct {
	ID        int    `json:"id"`
	Suit      string `json:"suit"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
	GameValue int    `json:"game_value"`
}

// Describe builds the display record for a card. The face cards keep their
// Spanish names with the traditional point labels.
func Describe(c Card) Info {
	number := Value(c)
	name := fmt.Sprintf("%d", number)
	switch number {
	case 8:
		name = "Sota (10)"
	case 9:
		name = "Caballo (11)"
	case 10:
		name = "Rey (12)"
	}
	return Info{
		ID:        int(c),
		Suit:      SuitName(c),
		Number:    number,
		Name:      fmt.Sprintf("%s de %s", name, SuitName(c)),
		GameValue: number,
	}
}

// Catalog returns display records for the whole deck in id order.
func Catalog() []Info {
	infos := make([]Info, DeckSize)
	for i, c := range NewDeck() {
		infos[i] = Describe(c)
	}
	return infos
}
