package internal

import (
	"testing"

	"landlord/internal/domain"
)

func TestProfileHand_CountsGroups(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "3 4 4 5 5 5 9 9 9 9 2 2 w W"))

	profile := ProfileHand(hand)

	if profile.Singles != 1 {
		t.Fatalf("Singles = %d, want 1", profile.Singles)
	}
	if profile.Pairs != 2 {
		t.Fatalf("Pairs = %d, want 2 (fours and twos)", profile.Pairs)
	}
	if profile.Trios != 1 {
		t.Fatalf("Trios = %d, want 1", profile.Trios)
	}
	if profile.Bombs != 1 {
		t.Fatalf("Bombs = %d, want 1", profile.Bombs)
	}
	if !profile.Rocket || profile.BigCards != 4 {
		t.Fatalf("Rocket = %v, BigCards = %d; want rocket and 4 big cards", profile.Rocket, profile.BigCards)
	}
}

func TestControlRanks(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "3 7 7 7 7 2 w"))
	skip := ControlRanks(hand)
	for r, want := range map[domain.Rank]bool{
		domain.RankThree:      false,
		7:                     true,
		domain.RankTwo:        true,
		domain.RankBlackJoker: true,
		domain.RankAce:        false,
	} {
		if got := skip(r); got != want {
			t.Errorf("skip(%s) = %v, want %v", r, got, want)
		}
	}
}
