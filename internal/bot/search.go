package bot

import (
	"landlord/internal/bot/internal"
	"landlord/internal/domain"
)

// leadPriority breaks ties between lead candidates shedding the same number of cards.
var leadPriority = map[domain.PatternType]int{
	domain.PlaneWithPairs:   9,
	domain.PlaneWithSingles: 8,
	domain.Plane:            7,
	domain.PairStraight:     6,
	domain.Straight:         5,
	domain.TrioPair:         4,
	domain.TrioSingle:       3,
	domain.Trio:             2,
	domain.Pair:             1,
	domain.Single:           0,
}

// FindLead picks a free lead. It plays the whole hand when that is one
// pattern, otherwise the ordinary block shedding the most cards, and touches
// twos, jokers and bombs only when nothing else is left.
func FindLead(hand domain.Hand) []domain.Card {
	if hand.Empty() {
		return nil
	}
	all := hand.Cards()
	if domain.Classify(all).Valid() {
		return all
	}

	skip := internal.ControlRanks(hand)
	var best internal.Move
	found := false
	for _, m := range leadCandidates(hand, skip) {
		if !found || betterLead(m, best) {
			best, found = m, true
		}
	}
	if found {
		return best.Cards
	}
	return controlLead(hand)
}

func betterLead(m, best internal.Move) bool {
	if m.Len() != best.Len() {
		return m.Len() > best.Len()
	}
	if leadPriority[m.Play.Type] != leadPriority[best.Play.Type] {
		return leadPriority[m.Play.Type] > leadPriority[best.Play.Type]
	}
	return m.Play.Rank < best.Play.Rank
}

// leadCandidates lists the lowest instance of every shape built from non-control ranks.
func leadCandidates(hand domain.Hand, skip internal.RankFilter) []internal.Move {
	var out []internal.Move
	first := func(moves []internal.Move) {
		if len(moves) > 0 {
			out = append(out, moves[0])
		}
	}
	longest := func(moves []internal.Move) {
		var best internal.Move
		for _, m := range moves {
			if m.Len() > best.Len() {
				best = m
			}
		}
		if best.Len() > 0 {
			out = append(out, best)
		}
	}

	first(internal.FindGroups(hand, 1, 0, skip))
	first(internal.FindGroups(hand, 2, 0, skip))
	trios := internal.FindGroups(hand, 3, 0, skip)
	first(trios)
	if len(trios) > 0 {
		for width := 1; width <= 2; width++ {
			if m, ok := internal.AttachKeeping(hand, trios[0], 1, width, skip); ok {
				out = append(out, m)
			}
		}
	}

	longest(internal.LongestChains(hand, 1, 5, skip))
	longest(internal.LongestChains(hand, 2, 3, skip))

	planes := internal.LongestChains(hand, 3, 2, skip)
	longest(planes)
	for _, plane := range planes {
		for width := 1; width <= 2; width++ {
			if m, ok := internal.AttachKeeping(hand, plane, plane.Play.Length, width, skip); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// controlLead leads from twos, jokers and bombs, keeping the rocket last.
func controlLead(hand domain.Hand) []domain.Card {
	counts := hand.Counts()
	if n := counts[domain.RankTwo]; n > 0 && n < 4 {
		return hand.Take(domain.RankTwo, n)
	}
	jokers := counts[domain.RankBlackJoker] + counts[domain.RankRedJoker]
	if jokers == 1 {
		if hand.Has(domain.BlackJoker) {
			return []domain.Card{domain.BlackJoker}
		}
		return []domain.Card{domain.RedJoker}
	}
	if bombs := internal.FindBombs(hand, 0); len(bombs) > 0 {
		return bombs[0].Cards
	}
	if rocket, ok := internal.FindRocket(hand); ok {
		return rocket.Cards
	}
	return hand.Cards()[:1]
}

// FindBestFollow returns the cheapest answer to last, or nil to pass. Same
// shapes are tried first, then bombs, then the rocket. When ally is set the
// policy may pass on a teammate's play.
func FindBestFollow(hand domain.Hand, last domain.Play, ally bool, policy AllyPolicy) []domain.Card {
	if last.Type == domain.Rocket || !last.Valid() || hand.Empty() {
		return nil
	}

	var answer internal.Move
	if moves := internal.FindBeating(hand, last); len(moves) > 0 && last.Type != domain.Bomb {
		answer = moves[0]
	} else {
		above := domain.Rank(0)
		if last.Type == domain.Bomb {
			above = last.Rank
		}
		if bombs := internal.FindBombs(hand, above); len(bombs) > 0 {
			answer = bombs[0]
		} else if rocket, ok := internal.FindRocket(hand); ok {
			answer = rocket
		}
	}
	if answer.Len() == 0 {
		return nil
	}
	if ally && policy.Withhold(hand.Len(), last.Count, answer.Len(), answer.Play.IsOverride()) {
		return nil
	}
	return answer.Cards
}
