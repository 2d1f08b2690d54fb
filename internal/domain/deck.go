package domain

import "math/rand"

const (
	Seats      = 3
	HandSize   = 17
	BottomSize = 3
)

// NewDeck returns the full ordered 54-card deck.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for id := Card(1); id <= DeckSize; id++ {
		deck = append(deck, id)
	}
	return deck
}

// ShuffleDeck shuffles deck in place with rng.
func ShuffleDeck(rng *rand.Rand, deck []Card) {
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
}

// DealDeck splits a 54-card deck into three 17-card hands and the 3 bottom cards.
func DealDeck(deck []Card) ([Seats]Hand, []Card) {
	var hands [Seats]Hand
	for seat := 0; seat < Seats; seat++ {
		hands[seat] = NewHand(deck[seat*HandSize : (seat+1)*HandSize])
	}
	bottom := append([]Card(nil), deck[Seats*HandSize:]...)
	return hands, bottom
}
