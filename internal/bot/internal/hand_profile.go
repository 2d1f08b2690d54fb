package internal

import "landlord/internal/domain"

// HandProfile summarizes the control cards and structure of a hand.
type HandProfile struct {
	TotalCards int
	Singles    int
	Pairs      int
	Trios      int
	Bombs      int
	Twos       int
	Jokers     int
	Rocket     bool
	// BigCards counts jokers and twos, the cards that decide tricks late in a round.
	BigCards int
}

// ProfileHand tallies group sizes per rank.
func ProfileHand(hand domain.Hand) HandProfile {
	counts := hand.Counts()
	profile := HandProfile{TotalCards: hand.Len()}
	for r := domain.RankThree; r <= domain.RankTwo; r++ {
		switch counts[r] {
		case 1:
			profile.Singles++
		case 2:
			profile.Pairs++
		case 3:
			profile.Trios++
		case 4:
			profile.Bombs++
		}
	}
	profile.Twos = counts[domain.RankTwo]
	profile.Jokers = counts[domain.RankBlackJoker] + counts[domain.RankRedJoker]
	profile.Rocket = profile.Jokers == 2
	profile.BigCards = profile.Twos + profile.Jokers
	return profile
}

// ControlRanks skips twos, jokers and any rank held four times.
func ControlRanks(hand domain.Hand) RankFilter {
	counts := hand.Counts()
	return func(r domain.Rank) bool {
		return r >= domain.RankTwo || counts[r] == 4
	}
}
