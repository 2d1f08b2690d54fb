package domain

import (
	"fmt"
	"strings"
)

// Card is a card identifier in 1..54. Ids 1..52 cover faces A..K in four
// suit blocks of 13; 53 and 54 are the black and red jokers.
type Card int

const (
	BlackJoker Card = 53
	RedJoker   Card = 54

	DeckSize  = 54
	suitCount = 4
	faceCount = 13
)

// Rank is the comparison ordinal of a card: 3..13 for 3..K, then A, 2 and the jokers.
type Rank int

const (
	RankThree      Rank = 3
	RankJack       Rank = 11
	RankQueen      Rank = 12
	RankKing       Rank = 13
	RankAce        Rank = 14
	RankTwo        Rank = 15
	RankBlackJoker Rank = 16
	RankRedJoker   Rank = 17

	// MaxChainRank is the highest rank allowed inside straights, pair straights and planes.
	MaxChainRank = RankAce
)

var suitSymbols = [suitCount]string{"♠", "♥", "♣", "♦"}

// Valid reports whether c is inside 1..54.
func (c Card) Valid() bool {
	return c >= 1 && c <= DeckSize
}

// IsJoker reports whether c is one of the two jokers.
func (c Card) IsJoker() bool {
	return c == BlackJoker || c == RedJoker
}

// Face returns 1 (A) .. 13 (K), or 0 for a joker.
func (c Card) Face() int {
	if c.IsJoker() {
		return 0
	}
	return (int(c)-1)%faceCount + 1
}

// Suit returns the suit block 0..3 of a non-joker card, or -1 for a joker.
func (c Card) Suit() int {
	if c.IsJoker() {
		return -1
	}
	return (int(c) - 1) / faceCount
}

// Rank maps the card onto its comparison ordinal.
func (c Card) Rank() Rank {
	switch c {
	case RedJoker:
		return RankRedJoker
	case BlackJoker:
		return RankBlackJoker
	}
	return faceRank(c.Face())
}

func faceRank(face int) Rank {
	switch face {
	case 1:
		return RankAce
	case 2:
		return RankTwo
	}
	return Rank(face)
}

// NewCard returns the id of the card with the given face (1..13) and suit (0..3).
func NewCard(face, suit int) Card {
	return Card(suit*faceCount + face)
}

// Cards returns every card of rank r in id order.
func (r Rank) Cards() []Card {
	switch r {
	case RankRedJoker:
		return []Card{RedJoker}
	case RankBlackJoker:
		return []Card{BlackJoker}
	}
	face := int(r)
	switch r {
	case RankAce:
		face = 1
	case RankTwo:
		face = 2
	}
	out := make([]Card, 0, suitCount)
	for s := 0; s < suitCount; s++ {
		out = append(out, NewCard(face, s))
	}
	return out
}

// Ordinary reports whether r is a plain rank 3..A, usable in chains and attachments.
func (r Rank) Ordinary() bool {
	return r >= RankThree && r <= RankAce
}

// String renders the face label used in prompts and logs.
func (r Rank) String() string {
	switch r {
	case RankRedJoker:
		return "W"
	case RankBlackJoker:
		return "w"
	case RankTwo:
		return "2"
	case RankAce:
		return "A"
	case RankKing:
		return "K"
	case RankQueen:
		return "Q"
	case RankJack:
		return "J"
	}
	if r >= RankThree && r <= 10 {
		return fmt.Sprintf("%d", int(r))
	}
	return "?"
}

// ParseFace maps a face label (A, 2..10, 0 for 10, J, Q, K, w, W) onto a Rank.
func ParseFace(label string) (Rank, bool) {
	switch label {
	case "W":
		return RankRedJoker, true
	case "w":
		return RankBlackJoker, true
	}
	switch strings.ToUpper(label) {
	case "A":
		return RankAce, true
	case "2":
		return RankTwo, true
	case "K":
		return RankKing, true
	case "Q":
		return RankQueen, true
	case "J":
		return RankJack, true
	case "10", "0":
		return 10, true
	}
	if len(label) == 1 && label[0] >= '3' && label[0] <= '9' {
		return Rank(label[0] - '0'), true
	}
	return 0, false
}

func (c Card) String() string {
	switch c {
	case RedJoker:
		return "RJ"
	case BlackJoker:
		return "BJ"
	}
	if !c.Valid() {
		return fmt.Sprintf("Card(%d)", int(c))
	}
	return c.Rank().String() + suitSymbols[c.Suit()]
}

// FormatCards joins card labels with spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
