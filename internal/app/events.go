package app

import "landlord/internal/domain"

// EventKind identifies emitted game events for dispatch.
type EventKind string

const (
	EventHandDealt      EventKind = "hand_dealt"
	EventBidPlaced      EventKind = "bid_placed"
	EventRedeal         EventKind = "redeal"
	EventLandlordChosen EventKind = "landlord_chosen"
	EventCardsPlayed    EventKind = "cards_played"
	EventTurnPassed     EventKind = "turn_passed"
	EventRoundOver      EventKind = "round_over"
)

// Event is a game event with optional targeted recipients.
type Event struct {
	Kind    EventKind
	Payload any
	Seats   []int // empty means broadcast
}

// Private reports whether the event is addressed to specific seats.
func (e Event) Private() bool {
	return len(e.Seats) > 0
}

type HandDealtPayload struct {
	Seat        int           `json:"seat"`
	Hand        []domain.Card `json:"hand"`
	FirstBidder int           `json:"first_bidder"`
}

type BidPlacedPayload struct {
	Seat     int `json:"seat"`
	Bid      int `json:"bid"`
	HighBid  int `json:"high_bid"`
	NextSeat int `json:"next_seat"`
}

type RedealPayload struct {
	Redeals int    `json:"redeals"`
	Reason  string `json:"reason"`
}

type LandlordChosenPayload struct {
	Seat   int           `json:"seat"`
	Bid    int           `json:"bid"`
	Bottom []domain.Card `json:"bottom"`
	Forced bool          `json:"forced,omitempty"`
}

type CardsPlayedPayload struct {
	Seat      int           `json:"seat"`
	Cards     []domain.Card `json:"cards"`
	Pattern   string        `json:"pattern"`
	Remaining int           `json:"remaining"`
	NextSeat  int           `json:"next_seat"`
}

type TurnPassedPayload struct {
	Seat     int  `json:"seat"`
	NextSeat int  `json:"next_seat"`
	NewTrick bool `json:"new_trick"`
}

type RoundOverPayload struct {
	Winner      int                         `json:"winner"`
	Landlord    int                         `json:"landlord"`
	LandlordWon bool                        `json:"landlord_won"`
	Bid         int                         `json:"bid"`
	// Remaining holds every seat's unplayed cards; the winner's entry is empty.
	Remaining   [domain.Seats][]domain.Card `json:"remaining"`
}
