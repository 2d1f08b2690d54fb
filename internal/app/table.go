package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"landlord/internal/bot"
	"landlord/internal/domain"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const DefaultDecisionTimeout = 5 * time.Second

// TableOptions tunes how a Table consults its providers.
type TableOptions struct {
	Timeout   time.Duration
	Ally      bot.AllyPolicy
	Publisher ports.EventPublisher
	// Sink receives every event after it is applied, in order.
	Sink func(Event)
}

// Table drives one game with a provider per seat. A nil provider marks a
// seat whose moves arrive through Submit calls. Not safe for concurrent use.
type Table struct {
	Game      *domain.Game
	svc       *Service
	providers [domain.Seats]ports.DecisionProvider
	opts      TableOptions
	logger    runtime.Logger
}

// Result summarizes a finished round.
type Result struct {
	Winner      int
	Landlord    int
	LandlordWon bool
	Bid         int
	Redeals     int
	Remaining   [domain.Seats][]domain.Card
}

// NewTable wires a game to its service and seat providers.
func NewTable(game *domain.Game, svc *Service, providers []ports.DecisionProvider, opts TableOptions, logger runtime.Logger) (*Table, error) {
	if len(providers) != domain.Seats {
		return nil, fmt.Errorf("table needs %d providers, got %d", domain.Seats, len(providers))
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDecisionTimeout
	}
	t := &Table{
		Game:   game,
		svc:    svc,
		opts:   opts,
		logger: logger.WithField("game_id", game.ID),
	}
	copy(t.providers[:], providers)
	return t, nil
}

// Provider returns the provider of seat, nil for externally driven seats.
func (t *Table) Provider(seat int) ports.DecisionProvider {
	return t.providers[seat]
}

// SetProvider replaces the provider of seat, e.g. when a bot takes over an empty seat.
func (t *Table) SetProvider(seat int, p ports.DecisionProvider) {
	t.providers[seat] = p
}

// Deal starts a round.
func (t *Table) Deal(ctx context.Context) error {
	events, err := t.svc.Deal(t.Game)
	if err != nil {
		return err
	}
	t.emit(ctx, events)
	return nil
}

// Run plays a full round with every seat provider-driven.
func (t *Table) Run(ctx context.Context) (Result, error) {
	for seat, p := range t.providers {
		if p == nil {
			return Result{}, fmt.Errorf("seat %d has no provider", seat)
		}
	}
	if t.Game.Phase == domain.PhaseDealing {
		if err := t.Deal(ctx); err != nil {
			return Result{}, err
		}
	}
	if err := t.RunBidding(ctx); err != nil {
		return Result{}, err
	}
	for t.Game.Phase == domain.PhasePlaying {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := t.PlayTurn(ctx); err != nil {
			return Result{}, err
		}
	}
	return t.Result(), nil
}

// Result reports the outcome so far; Winner is -1 until the round is over.
func (t *Table) Result() Result {
	g := t.Game
	res := Result{
		Winner:   g.Winner,
		Landlord: g.Landlord,
		Bid:      g.HighBid,
		Redeals:  g.Redeals,
	}
	res.LandlordWon = g.Winner >= 0 && g.Winner == g.Landlord
	for seat := range g.Hands {
		res.Remaining[seat] = g.Hands[seat].Cards()
	}
	return res
}

// RunBidding asks providers for bids until a landlord is chosen.
func (t *Table) RunBidding(ctx context.Context) error {
	for t.Game.Phase == domain.PhaseBidding {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.BidTurn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// BidTurn asks the seat for one bid. Failed or out-of-range bids are
// replaced by the rule bid.
func (t *Table) BidTurn(ctx context.Context) error {
	seat := t.Game.BidTurn
	p := t.providers[seat]
	if p == nil {
		return fmt.Errorf("seat %d has no provider", seat)
	}
	hand := t.Game.Hands[seat]
	history := append([]domain.BidRecord(nil), t.Game.Bids...)

	bid, err := call(ctx, t.opts.Timeout, func(cctx context.Context) (int, error) {
		return p.Bid(cctx, hand, history)
	})
	if err != nil {
		t.downgrade("Bid", seat, err)
		bid = bot.RuleBid(hand, history)
	}
	if err := t.SubmitBid(ctx, seat, bid); err != nil {
		if !errors.Is(err, ErrBidOutOfRange) {
			return err
		}
		fallback := bot.RuleBid(hand, history)
		t.logger.Warn("Bid: seat %d bid out of range: %v, bidding %d", seat, err, fallback)
		return t.SubmitBid(ctx, seat, fallback)
	}
	return nil
}

// SubmitBid applies a bid from seat.
func (t *Table) SubmitBid(ctx context.Context, seat, bid int) error {
	events, err := t.svc.PlaceBid(t.Game, seat, bid)
	if err != nil {
		return err
	}
	t.emit(ctx, events)
	return nil
}

// PlayTurn asks the seat to move for one move. Provider failures are replaced
// by the search; an illegal follow passes and an illegal lead is replaced by
// the search's lead.
func (t *Table) PlayTurn(ctx context.Context) error {
	seat := t.Game.Turn
	p := t.providers[seat]
	if p == nil {
		return fmt.Errorf("seat %d has no provider", seat)
	}
	hand := t.Game.Hands[seat]
	pc := t.PlayContext(seat)

	cards, err := call(ctx, t.opts.Timeout, func(cctx context.Context) ([]domain.Card, error) {
		return p.Play(cctx, hand, pc)
	})
	if err != nil {
		t.downgrade("Play", seat, err)
		cards = bot.Decide(hand, pc, t.opts.Ally)
	}
	return t.SubmitPlay(ctx, seat, cards)
}

// AutoPlay moves for seat with the search, as when a turn deadline passes.
func (t *Table) AutoPlay(ctx context.Context, seat int) error {
	return t.SubmitPlay(ctx, seat, bot.Decide(t.Game.Hands[seat], t.PlayContext(seat), t.opts.Ally))
}

// SubmitPlay applies a move from seat, repairing illegal ones.
func (t *Table) SubmitPlay(ctx context.Context, seat int, cards []domain.Card) error {
	events, err := t.svc.Play(t.Game, seat, cards)
	if err == nil {
		t.emit(ctx, events)
		return nil
	}
	if !isIllegal(err) {
		return err
	}

	var repair []domain.Card
	if t.Game.Following() {
		t.logger.Warn("Play: seat %d illegal follow, passing: %v", seat, err)
	} else {
		repair = bot.FindLead(t.Game.Hands[seat])
		t.logger.Warn("Play: seat %d illegal lead, leading %s instead: %v", seat, domain.FormatCards(repair), err)
	}
	events, err = t.svc.Play(t.Game, seat, repair)
	if err != nil {
		return err
	}
	t.emit(ctx, events)
	return nil
}

// Validate checks cards for seat without applying them.
func (t *Table) Validate(seat int, cards []domain.Card) error {
	if err := checkTurn(t.Game, domain.PhasePlaying, seat, t.Game.Turn); err != nil {
		return err
	}
	var last *domain.Trick
	if t.Game.Following() {
		last = t.Game.Last
	}
	return domain.Validate(t.Game.Hands[seat], cards, last).Err()
}

// PlayContext describes the current trick from seat's point of view.
func (t *Table) PlayContext(seat int) ports.PlayContext {
	g := t.Game
	pc := ports.PlayContext{
		Seat:           seat,
		IsLandlord:     g.IsLandlord(seat),
		LastPlayerSeat: -1,
	}
	for i := range g.Hands {
		pc.CardsLeft[i] = g.Hands[i].Len()
	}
	if g.Last != nil && g.Last.Seat != seat {
		pc.IsFollow = true
		pc.LastPlayed = append([]domain.Card(nil), g.Last.Cards...)
		pc.LastPlayerSeat = g.Last.Seat
		pc.LastPlayerIsLandlord = g.IsLandlord(g.Last.Seat)
	}
	return pc
}

func (t *Table) downgrade(op string, seat int, err error) {
	switch {
	case errors.Is(err, domain.ErrProviderTimeout):
		t.logger.Warn("%s: seat %d provider timed out, using search: %v", op, seat, err)
	default:
		t.logger.Warn("%s: seat %d provider failed, using search: %v", op, seat, err)
	}
}

func (t *Table) emit(ctx context.Context, events []Event) {
	for _, ev := range events {
		t.logger.Debug("Event: %s %+v", ev.Kind, ev.Payload)
		if t.opts.Sink != nil {
			t.opts.Sink(ev)
		}
		if t.opts.Publisher != nil {
			if err := t.opts.Publisher.Publish(ctx, t.Game.ID, string(ev.Kind), ev.Payload); err != nil {
				t.logger.Warn("Event: failed to publish %s: %v", ev.Kind, err)
			}
		}
	}
}

func isIllegal(err error) bool {
	return errors.Is(err, domain.ErrIllegalSubset) ||
		errors.Is(err, domain.ErrIllegalPattern) ||
		errors.Is(err, domain.ErrIllegalFollow)
}

// call runs fn under a deadline, giving up on providers that ignore it.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(cctx)
		done <- result{v, err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err == nil {
			return r.v, nil
		}
		if errors.Is(r.err, domain.ErrProviderTimeout) || errors.Is(r.err, domain.ErrProviderError) {
			return zero, r.err
		}
		if cctx.Err() != nil {
			return zero, fmt.Errorf("%v: %w", r.err, domain.ErrProviderTimeout)
		}
		return zero, fmt.Errorf("%v: %w", r.err, domain.ErrProviderError)
	case <-cctx.Done():
		return zero, fmt.Errorf("after %s: %w", timeout, domain.ErrProviderTimeout)
	}
}
