package internal

import (
	"testing"

	"landlord/internal/domain"
)

func TestFindGroupsAscending(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "3 3 6 6 6 9 9 K"))
	moves := FindGroups(hand, 2, 4, nil)
	if len(moves) != 2 {
		t.Fatalf("got %d pairs above 4, want 2", len(moves))
	}
	if moves[0].Play.Rank != 6 || moves[1].Play.Rank != 9 {
		t.Fatalf("pairs out of order: %+v", moves)
	}
}

func TestFindChains(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "3 4 5 6 7 8 9 2"))
	moves := FindChains(hand, 1, 5, domain.RankThree, nil)
	if len(moves) != 2 {
		t.Fatalf("got %d straights of 5 above 3, want 2", len(moves))
	}
	if moves[0].Play.Rank != 4 || moves[0].Play.Type != domain.Straight {
		t.Fatalf("first straight = %+v, want 4-8", moves[0].Play)
	}
}

func TestLongestChainsStopsBeforeTwo(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "10 J Q K A 2"))
	moves := LongestChains(hand, 1, 5, nil)
	if len(moves) != 1 || moves[0].Play.Length != 5 {
		t.Fatalf("LongestChains = %+v, want one 10-A straight", moves)
	}
}

func TestAttachPrefersExactGroups(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "4 4 4 5 5 5 6 6 8 9"))
	base := FindGroups(hand, 3, 0, nil)[0]

	single, ok := Attach(hand, base, 1, 1, nil)
	if !ok || single.Play.Type != domain.TrioSingle {
		t.Fatalf("single kicker attach = %+v, %v", single.Play, ok)
	}
	if r := single.Cards[3].Rank(); r != 8 {
		t.Fatalf("kicker rank = %s, want 8 (lowest lone card)", r)
	}

	pair, ok := Attach(hand, base, 1, 2, nil)
	if !ok || pair.Play.Type != domain.TrioPair {
		t.Fatalf("pair kicker attach = %+v, %v", pair.Play, ok)
	}
	if r := pair.Cards[3].Rank(); r != 6 {
		t.Fatalf("kicker rank = %s, want 6", r)
	}
}

func TestAttachKeepingSkipsControlRanks(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "3 3 3 7 7 7 7 2"))
	skip := ControlRanks(hand)
	base := FindGroups(hand, 3, 0, skip)[0]

	if m, ok := AttachKeeping(hand, base, 1, 1, skip); ok {
		t.Fatalf("AttachKeeping broke a control rank: %+v", m.Play)
	}
	if m, ok := AttachKeeping(hand, base, 1, 2, skip); ok {
		t.Fatalf("AttachKeeping broke the bomb: %+v", m.Play)
	}
	if m, ok := Attach(hand, base, 1, 2, skip); !ok || m.Play.Type != domain.TrioPair {
		t.Fatalf("Attach last resort = %+v, %v", m.Play, ok)
	}
}

func TestFindBeatingPlaneWithWings(t *testing.T) {
	hand := domain.NewHand(cardsOf(t, "7 7 7 8 8 8 3 J K"))
	last := domain.Classify(cardsOf(t, "5 5 5 6 6 6 9 10"))
	moves := FindBeating(hand, last)
	if len(moves) != 1 {
		t.Fatalf("got %d answers, want 1", len(moves))
	}
	if got := moves[0].Play; got.Type != domain.PlaneWithSingles || got.Rank != 7 {
		t.Fatalf("answer = %+v", got)
	}
}

func TestFindRocket(t *testing.T) {
	if _, ok := FindRocket(domain.NewHand(cardsOf(t, "w 3"))); ok {
		t.Fatal("found a rocket with one joker")
	}
	m, ok := FindRocket(domain.NewHand(cardsOf(t, "w W 3")))
	if !ok || m.Play.Type != domain.Rocket {
		t.Fatalf("FindRocket = %+v, %v", m, ok)
	}
}
