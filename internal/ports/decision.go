package ports

import (
	"context"

	"landlord/internal/domain"
)

// PlayContext describes the trick a seat is asked to answer.
type PlayContext struct {
	Seat                 int
	LastPlayed           []domain.Card
	LastPlayerSeat       int
	LastPlayerIsLandlord bool
	IsLandlord           bool
	// IsFollow is false on a free lead, where passing is not allowed.
	IsFollow bool
	// CardsLeft holds the hand sizes of all seats.
	CardsLeft [domain.Seats]int
}

// DecisionProvider supplies bids and plays for one seat. Results are
// validated by the caller; errors and timeouts fall back to a computed move.
type DecisionProvider interface {
	// Bid returns a bid in 0..3 given the bids placed so far.
	Bid(ctx context.Context, hand domain.Hand, history []domain.BidRecord) (int, error)
	// Play returns the cards to play; an empty slice passes.
	Play(ctx context.Context, hand domain.Hand, pc PlayContext) ([]domain.Card, error)
}

// EventPublisher forwards table events to an external bus.
type EventPublisher interface {
	Publish(ctx context.Context, gameID, kind string, payload any) error
}

// RoomDirectory records which node hosts a room.
type RoomDirectory interface {
	Register(ctx context.Context, roomID, node string) error
	Lookup(ctx context.Context, roomID string) (string, error)
	// Refresh extends a live room's entry; it fails with a not-found error once the entry expired.
	Refresh(ctx context.Context, roomID string) error
	Unregister(ctx context.Context, roomID string) error
}
