package bot

import (
	"context"
	"testing"

	"landlord/internal/domain"
	"landlord/internal/ports"
)

func TestRuleBid(t *testing.T) {
	tests := []struct {
		name    string
		hand    string
		history []domain.BidRecord
		want    int
	}{
		{name: "no big cards", hand: "3 4 5 6 7 8", want: 0},
		{name: "one big card opens at 1", hand: "3 4 2", want: 1},
		{name: "one big card cannot raise", hand: "3 4 2", history: []domain.BidRecord{{Seat: 0, Bid: 1}}, want: 1},
		{name: "two big cards raise", hand: "3 2 w", history: []domain.BidRecord{{Seat: 0, Bid: 1}}, want: 2},
		{name: "four big cards", hand: "2 2 w W", history: []domain.BidRecord{{Seat: 0, Bid: 2}}, want: 3},
		{name: "four big cards open low", hand: "2 2 w W", want: 1},
		{name: "two bombs", hand: "3 3 3 3 5 5 5 5", history: []domain.BidRecord{{Seat: 0, Bid: 2}}, want: 3},
		{name: "one bomb", hand: "3 3 3 3 8 9", history: []domain.BidRecord{{Seat: 0, Bid: 1}}, want: 2},
		{name: "one bomb caps at 2", hand: "6 6 6 6 8 9", history: []domain.BidRecord{{Seat: 0, Bid: 2}}, want: 2},
		{name: "bomb and rocket", hand: "6 6 6 6 w W", history: []domain.BidRecord{{Seat: 0, Bid: 2}}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RuleBid(handOf(t, tt.hand), tt.history); got != tt.want {
				t.Errorf("RuleBid = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRuleProviderPlay(t *testing.T) {
	p := NewRuleProvider(DefaultAllyPolicy)
	hand := handOf(t, "3 4 5 6 7 9 9")

	lead, err := p.Play(context.Background(), hand, ports.PlayContext{Seat: 1})
	if err != nil {
		t.Fatalf("Play lead: %v", err)
	}
	if got := ranksOf(lead); got != "3 4 5 6 7" {
		t.Fatalf("lead = %q, want the straight", got)
	}

	follow, err := p.Play(context.Background(), hand, ports.PlayContext{
		Seat:                 1,
		IsFollow:             true,
		LastPlayed:           cardsOf(t, "8 8"),
		LastPlayerSeat:       0,
		LastPlayerIsLandlord: true,
	})
	if err != nil {
		t.Fatalf("Play follow: %v", err)
	}
	if got := ranksOf(follow); got != "9 9" {
		t.Fatalf("follow = %q, want 9 9", got)
	}
}

func TestRuleProviderAllyPasses(t *testing.T) {
	p := NewRuleProvider(DefaultAllyPolicy)
	hand := handOf(t, "3 4 5 6 7 9 9 J Q K")
	follow, err := p.Play(context.Background(), hand, ports.PlayContext{
		Seat:           2,
		IsFollow:       true,
		LastPlayed:     cardsOf(t, "8 8"),
		LastPlayerSeat: 1,
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(follow) != 0 {
		t.Fatalf("peasant beat its teammate's cheap pair with %s", ranksOf(follow))
	}
}

func TestRuleProviderOwnTrickLeads(t *testing.T) {
	p := NewRuleProvider(DefaultAllyPolicy)
	hand := handOf(t, "3 5")
	got, _ := p.Play(context.Background(), hand, ports.PlayContext{Seat: 0, IsFollow: true, LastPlayed: cardsOf(t, "K"), LastPlayerSeat: 0})
	if ranksOf(got) != "3" {
		t.Fatalf("own trick should lead the lowest card, got %q", ranksOf(got))
	}
}
