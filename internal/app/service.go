package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"landlord/internal/domain"
)

var (
	ErrNotYourTurn   = errors.New("not this seat's turn")
	ErrWrongPhase    = errors.New("action not allowed in this phase")
	ErrBidOutOfRange = errors.New("bid outside 0..3")
	ErrUnknownSeat   = errors.New("seat not in 0..2")
	ErrRoomNotFound  = errors.New("room not found")
)

// Service contains the Dou Di Zhu transitions operating on domain state.
// Each method validates first and mutates only on success.
type Service struct {
	rng *rand.Rand
	// MaxRedeals forces a landlord after that many all-pass rounds; 0 redeals forever.
	MaxRedeals int
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, maxRedeals int) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, MaxRedeals: maxRedeals}
}

// Deal shuffles a fresh deck, deals 17 cards per seat plus the bottom and
// opens bidding at a random seat.
func (s *Service) Deal(game *domain.Game) ([]Event, error) {
	if game.Phase != domain.PhaseDealing && game.Phase != domain.PhaseBidding {
		return nil, fmt.Errorf("deal in %s: %w", game.Phase, ErrWrongPhase)
	}
	deck := domain.NewDeck()
	domain.ShuffleDeck(s.rng, deck)
	game.Hands, game.Bottom = domain.DealDeck(deck)

	game.Bids = nil
	game.HighBid = 0
	game.BidLeader = -1
	game.BidTurn = s.rng.Intn(domain.Seats)
	game.Landlord = -1
	game.Turn = game.BidTurn
	game.Last = nil
	game.Passed = [domain.Seats]bool{}
	game.Played = nil
	game.Winner = -1
	game.Phase = domain.PhaseBidding

	events := make([]Event, 0, domain.Seats)
	for seat := 0; seat < domain.Seats; seat++ {
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Seat:        seat,
				Hand:        game.Hands[seat].Cards(),
				FirstBidder: game.BidTurn,
			},
			Seats: []int{seat},
		})
	}
	return events, nil
}

// PlaceBid records seat's bid. Bidding ends on a 3 or after every seat has
// bid once; an all-zero round re-deals.
func (s *Service) PlaceBid(game *domain.Game, seat, bid int) ([]Event, error) {
	if err := checkTurn(game, domain.PhaseBidding, seat, game.BidTurn); err != nil {
		return nil, err
	}
	if bid < 0 || bid > domain.MaxBid {
		return nil, fmt.Errorf("bid %d: %w", bid, ErrBidOutOfRange)
	}

	game.Bids = append(game.Bids, domain.BidRecord{Seat: seat, Bid: bid})
	if bid > game.HighBid {
		game.HighBid = bid
		game.BidLeader = seat
	}
	game.BidTurn = domain.NextSeat(seat)

	events := []Event{{
		Kind:    EventBidPlaced,
		Payload: BidPlacedPayload{Seat: seat, Bid: bid, HighBid: game.HighBid, NextSeat: game.BidTurn},
	}}
	if bid < domain.MaxBid && len(game.Bids) < domain.Seats {
		return events, nil
	}

	if game.HighBid > 0 {
		return append(events, s.chooseLandlord(game, game.BidLeader, game.HighBid, false)), nil
	}

	game.Redeals++
	if s.MaxRedeals > 0 && game.Redeals >= s.MaxRedeals {
		return append(events, s.chooseLandlord(game, game.Bids[0].Seat, 1, true)), nil
	}
	events = append(events, Event{
		Kind:    EventRedeal,
		Payload: RedealPayload{Redeals: game.Redeals, Reason: domain.ErrNoLandlordBid.Error()},
	})
	dealt, err := s.Deal(game)
	if err != nil {
		return nil, err
	}
	return append(events, dealt...), nil
}

func (s *Service) chooseLandlord(game *domain.Game, seat, bid int, forced bool) Event {
	bottom := append([]domain.Card(nil), game.Bottom...)
	// The bottom was dealt from the same deck, so Add cannot collide.
	_ = game.Hands[seat].Add(bottom)
	game.Landlord = seat
	game.BidLeader = seat
	game.HighBid = bid
	game.Turn = seat
	game.Phase = domain.PhasePlaying
	return Event{
		Kind:    EventLandlordChosen,
		Payload: LandlordChosenPayload{Seat: seat, Bid: bid, Bottom: bottom, Forced: forced},
	}
}

// Play applies seat's move. An empty set is a pass. Illegal moves return the
// validator's error and leave the game untouched.
func (s *Service) Play(game *domain.Game, seat int, cards []domain.Card) ([]Event, error) {
	if err := checkTurn(game, domain.PhasePlaying, seat, game.Turn); err != nil {
		return nil, err
	}
	var last *domain.Trick
	if game.Following() {
		last = game.Last
	}
	if outcome := domain.Validate(game.Hands[seat], cards, last); outcome != domain.OutcomeLegal {
		return nil, fmt.Errorf("seat %d plays %s: %w", seat, domain.FormatCards(cards), outcome.Err())
	}

	if len(cards) == 0 {
		game.Passed[seat] = true
		newTrick := s.advance(game)
		return []Event{{
			Kind:    EventTurnPassed,
			Payload: TurnPassedPayload{Seat: seat, NextSeat: game.Turn, NewTrick: newTrick},
		}}, nil
	}

	played := append([]domain.Card(nil), cards...)
	if err := game.Hands[seat].Remove(played); err != nil {
		return nil, err
	}
	play := domain.Classify(played)
	game.Played = append(game.Played, played...)
	game.Last = &domain.Trick{Seat: seat, Cards: played, Play: play}
	game.Passed = [domain.Seats]bool{}

	if game.Hands[seat].Empty() {
		game.Phase = domain.PhaseRoundOver
		game.Winner = seat
		var remaining [domain.Seats][]domain.Card
		for i := range remaining {
			remaining[i] = append([]domain.Card{}, game.Hands[i].Cards()...)
		}
		return []Event{
			{
				Kind:    EventCardsPlayed,
				Payload: CardsPlayedPayload{Seat: seat, Cards: played, Pattern: play.Type.String(), NextSeat: -1},
			},
			{
				Kind: EventRoundOver,
				Payload: RoundOverPayload{
					Winner:      seat,
					Landlord:    game.Landlord,
					LandlordWon: seat == game.Landlord,
					Bid:         game.HighBid,
					Remaining:   remaining,
				},
			},
		}, nil
	}

	s.advance(game)
	return []Event{{
		Kind: EventCardsPlayed,
		Payload: CardsPlayedPayload{
			Seat:      seat,
			Cards:     played,
			Pattern:   play.Type.String(),
			Remaining: game.Hands[seat].Len(),
			NextSeat:  game.Turn,
		},
	}}, nil
}

// advance moves the turn on and clears the trick when it returns to its
// owner. It reports whether a new trick starts.
func (s *Service) advance(game *domain.Game) bool {
	game.Turn = domain.NextSeat(game.Turn)
	if game.Last != nil && game.Last.Seat == game.Turn {
		game.Last = nil
		game.Passed = [domain.Seats]bool{}
		return true
	}
	return false
}

func checkTurn(game *domain.Game, phase domain.Phase, seat, turn int) error {
	if game.Phase != phase {
		return fmt.Errorf("%s: %w", game.Phase, ErrWrongPhase)
	}
	if !domain.ValidSeat(seat) {
		return fmt.Errorf("seat %d: %w", seat, ErrUnknownSeat)
	}
	if seat != turn {
		return fmt.Errorf("seat %d, turn %d: %w", seat, turn, ErrNotYourTurn)
	}
	return nil
}
