package domain

import "fmt"

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhaseDealing   Phase = "dealing"
	PhaseBidding   Phase = "bidding"
	PhasePlaying   Phase = "playing"
	PhaseRoundOver Phase = "round_over"
)

const MaxBid = 3

// BidRecord is one seat's bid in bidding order.
type BidRecord struct {
	Seat int `json:"seat"`
	Bid  int `json:"bid"`
}

// Game is the authoritative state of one three-seat game. It is not safe for
// concurrent use; a single owner advances it.
type Game struct {
	ID    string
	Phase Phase

	Hands  [Seats]Hand
	Bottom []Card

	// Bidding.
	Bids      []BidRecord
	BidTurn   int
	BidLeader int
	HighBid   int
	Redeals   int

	Landlord int
	Turn     int
	Last     *Trick
	Passed   [Seats]bool
	Played   []Card
	Winner   int
}

// NewGame returns a game waiting to be dealt.
func NewGame(id string) *Game {
	return &Game{
		ID:        id,
		Phase:     PhaseDealing,
		BidLeader: -1,
		Landlord:  -1,
		Winner:    -1,
	}
}

// NextSeat returns the seat after seat, circularly.
func NextSeat(seat int) int {
	return (seat + 1) % Seats
}

// ValidSeat reports whether seat is 0..2.
func ValidSeat(seat int) bool {
	return seat >= 0 && seat < Seats
}

// IsLandlord reports whether seat won the bidding.
func (g *Game) IsLandlord(seat int) bool {
	return g.Landlord >= 0 && g.Landlord == seat
}

// Following reports whether the seat to move must answer an active trick.
func (g *Game) Following() bool {
	return g.Last != nil && g.Last.Seat != g.Turn
}

// CheckIntegrity verifies that hands, played cards and, before a landlord is
// chosen, the bottom cards partition the deck exactly once.
func (g *Game) CheckIntegrity() error {
	if g.Phase == PhaseDealing {
		return nil
	}
	seen := make(map[Card]bool, DeckSize)
	add := func(cards []Card) error {
		for _, c := range cards {
			if !c.Valid() || seen[c] {
				return fmt.Errorf("card %d seen twice: %w", int(c), ErrDeckIntegrity)
			}
			seen[c] = true
		}
		return nil
	}
	for _, h := range g.Hands {
		if err := add(h.cards); err != nil {
			return err
		}
	}
	if err := add(g.Played); err != nil {
		return err
	}
	if g.Landlord < 0 {
		if err := add(g.Bottom); err != nil {
			return err
		}
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("%d of %d cards accounted for: %w", len(seen), DeckSize, ErrDeckIntegrity)
	}
	return nil
}
