package bot

import (
	"context"

	"landlord/internal/domain"
	"landlord/internal/ports"
)

// RuleProvider decides deterministically from the hand alone.
type RuleProvider struct {
	Ally AllyPolicy
}

var _ ports.DecisionProvider = (*RuleProvider)(nil)

// NewRuleProvider returns a rule provider using the given ally policy.
func NewRuleProvider(ally AllyPolicy) *RuleProvider {
	return &RuleProvider{Ally: ally}
}

func (p *RuleProvider) Bid(ctx context.Context, hand domain.Hand, history []domain.BidRecord) (int, error) {
	return RuleBid(hand, history), nil
}

func (p *RuleProvider) Play(ctx context.Context, hand domain.Hand, pc ports.PlayContext) ([]domain.Card, error) {
	return Decide(hand, pc, p.Ally), nil
}

// Decide is the search-backed move for a seat: FindLead on a free lead,
// FindBestFollow otherwise.
func Decide(hand domain.Hand, pc ports.PlayContext, ally AllyPolicy) []domain.Card {
	if !pc.IsFollow || len(pc.LastPlayed) == 0 || pc.LastPlayerSeat == pc.Seat {
		return FindLead(hand)
	}
	teammate := !pc.LastPlayerIsLandlord && !pc.IsLandlord
	return FindBestFollow(hand, domain.Classify(pc.LastPlayed), teammate, ally)
}
