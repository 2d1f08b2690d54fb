package internal

import "landlord/internal/domain"

// Move is a concrete candidate play.
type Move struct {
	Cards []domain.Card
	Play  domain.Play
}

func (m Move) Len() int {
	return len(m.Cards)
}

// RankFilter excludes ranks from a search.
type RankFilter func(domain.Rank) bool

func allowAll(domain.Rank) bool { return false }

func newMove(cards []domain.Card) (Move, bool) {
	play := domain.Classify(cards)
	return Move{Cards: cards, Play: play}, play.Valid()
}

// FindGroups returns size cards of every rank above the given rank, ascending.
func FindGroups(hand domain.Hand, size int, above domain.Rank, skip RankFilter) []Move {
	if skip == nil {
		skip = allowAll
	}
	counts := hand.Counts()
	var moves []Move
	for r := above + 1; r <= domain.RankRedJoker; r++ {
		if r < domain.RankThree || counts[r] < size || skip(r) {
			continue
		}
		if m, ok := newMove(hand.Take(r, size)); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// FindChains returns runs of length consecutive ranks, width cards each,
// starting above the given rank, ascending by start.
func FindChains(hand domain.Hand, width, length int, above domain.Rank, skip RankFilter) []Move {
	if skip == nil {
		skip = allowAll
	}
	counts := hand.Counts()
	var moves []Move
	start := above + 1
	if start < domain.RankThree {
		start = domain.RankThree
	}
	for s := start; s+domain.Rank(length)-1 <= domain.MaxChainRank; s++ {
		if m, ok := chainAt(hand, counts, s, width, length, skip); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

func chainAt(hand domain.Hand, counts domain.Counts, start domain.Rank, width, length int, skip RankFilter) (Move, bool) {
	cards := make([]domain.Card, 0, width*length)
	for r := start; r < start+domain.Rank(length); r++ {
		if counts[r] < width || skip(r) {
			return Move{}, false
		}
		cards = append(cards, hand.Take(r, width)...)
	}
	return newMove(cards)
}

// LongestChains returns, for every start rank, the longest run of at least
// minLen ranks of the given width, ascending by start.
func LongestChains(hand domain.Hand, width, minLen int, skip RankFilter) []Move {
	if skip == nil {
		skip = allowAll
	}
	counts := hand.Counts()
	var moves []Move
	for s := domain.RankThree; s <= domain.MaxChainRank; s++ {
		n := 0
		for r := s; r <= domain.MaxChainRank && counts[r] >= width && !skip(r); r++ {
			n++
		}
		if n < minLen {
			continue
		}
		if m, ok := chainAt(hand, counts, s, width, n, skip); ok {
			moves = append(moves, m)
		}
	}
	return moves
}

// Attach adds kickers of the given width to base, choosing the lowest ranks
// not used by base. Ranks held exactly width times are preferred so larger
// groups stay intact; skipped ranks are used only as a last resort.
func Attach(hand domain.Hand, base Move, kickers, width int, skip RankFilter) (Move, bool) {
	return attach(hand, base, kickers, width, skip, true)
}

// AttachKeeping is Attach without the last resort: kickers never come from
// skipped ranks.
func AttachKeeping(hand domain.Hand, base Move, kickers, width int, skip RankFilter) (Move, bool) {
	return attach(hand, base, kickers, width, skip, false)
}

func attach(hand domain.Hand, base Move, kickers, width int, skip RankFilter, lastResort bool) (Move, bool) {
	if skip == nil {
		skip = allowAll
	}
	counts := hand.Counts()
	used := domain.RankCounts(base.Cards)
	eligible := func(r domain.Rank) bool {
		if used[r] > 0 || counts[r] < width {
			return false
		}
		if width == 1 || base.Play.Type == domain.Plane {
			return r.Ordinary()
		}
		return r <= domain.RankTwo
	}

	var picked []domain.Rank
	tiers := []func(domain.Rank) bool{
		func(r domain.Rank) bool { return counts[r] == width && !skip(r) },
		func(r domain.Rank) bool { return counts[r] > width && !skip(r) },
	}
	if lastResort {
		tiers = append(tiers, func(domain.Rank) bool { return true })
	}
	chosen := map[domain.Rank]bool{}
	for _, tier := range tiers {
		for r := domain.RankThree; r <= domain.RankTwo && len(picked) < kickers; r++ {
			if chosen[r] || !eligible(r) || !tier(r) {
				continue
			}
			chosen[r] = true
			picked = append(picked, r)
		}
	}
	if len(picked) < kickers {
		return Move{}, false
	}

	cards := append([]domain.Card(nil), base.Cards...)
	for _, r := range picked {
		cards = append(cards, hand.Take(r, width)...)
	}
	return newMove(cards)
}

// FindBeating returns same-shape candidates strictly above last, ascending.
func FindBeating(hand domain.Hand, last domain.Play) []Move {
	switch last.Type {
	case domain.Single:
		return FindGroups(hand, 1, last.Rank, nil)
	case domain.Pair:
		return FindGroups(hand, 2, last.Rank, nil)
	case domain.Trio:
		return FindGroups(hand, 3, last.Rank, nil)
	case domain.Bomb:
		return FindBombs(hand, last.Rank)
	case domain.TrioSingle, domain.TrioPair:
		width := 1
		if last.Type == domain.TrioPair {
			width = 2
		}
		return withKickers(hand, FindGroups(hand, 3, last.Rank, nil), 1, width, last)
	case domain.Straight:
		return FindChains(hand, 1, last.Length, last.Rank, nil)
	case domain.PairStraight:
		return FindChains(hand, 2, last.Length, last.Rank, nil)
	case domain.Plane:
		return FindChains(hand, 3, last.Length, last.Rank, nil)
	case domain.PlaneWithSingles, domain.PlaneWithPairs:
		width := 1
		if last.Type == domain.PlaneWithPairs {
			width = 2
		}
		return withKickers(hand, FindChains(hand, 3, last.Length, last.Rank, nil), last.Length, width, last)
	}
	return nil
}

func withKickers(hand domain.Hand, bases []Move, kickers, width int, want domain.Play) []Move {
	skip := BombRanks(hand)
	var moves []Move
	for _, base := range bases {
		m, ok := Attach(hand, base, kickers, width, skip)
		if ok && m.Play.Type == want.Type && m.Play.Count == want.Count {
			moves = append(moves, m)
		}
	}
	return moves
}

// FindBombs returns four-of-a-kind groups above the given rank, ascending.
func FindBombs(hand domain.Hand, above domain.Rank) []Move {
	return FindGroups(hand, 4, above, nil)
}

// FindRocket returns both jokers when held.
func FindRocket(hand domain.Hand) (Move, bool) {
	if !hand.Has(domain.BlackJoker) || !hand.Has(domain.RedJoker) {
		return Move{}, false
	}
	return newMove([]domain.Card{domain.BlackJoker, domain.RedJoker})
}

// BombRanks skips ranks held four times and the jokers when both are held.
func BombRanks(hand domain.Hand) RankFilter {
	counts := hand.Counts()
	rocket := counts[domain.RankBlackJoker] == 1 && counts[domain.RankRedJoker] == 1
	return func(r domain.Rank) bool {
		if r >= domain.RankBlackJoker {
			return rocket
		}
		return counts[r] == 4
	}
}
