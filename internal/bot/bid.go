package bot

import (
	"landlord/internal/bot/internal"
	"landlord/internal/domain"
)

// RuleBid bids from the number of big cards (twos and jokers) and bombs in
// hand, raising the current high bid by one up to a cap set by those counts.
// The rocket counts as a bomb.
func RuleBid(hand domain.Hand, history []domain.BidRecord) int {
	high := 0
	for _, b := range history {
		if b.Bid > high {
			high = b.Bid
		}
	}
	profile := internal.ProfileHand(hand)

	bombs := profile.Bombs
	if profile.Rocket {
		bombs++
	}

	limit := 0
	switch {
	case profile.BigCards >= 4, bombs >= 2:
		limit = 3
	case profile.BigCards >= 2, bombs >= 1:
		limit = 2
	case profile.BigCards >= 1:
		limit = 1
	}
	if limit == 0 {
		return 0
	}
	return min(limit, high+1)
}
