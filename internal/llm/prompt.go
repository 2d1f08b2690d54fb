package llm

import (
	"fmt"
	"strings"

	"landlord/internal/domain"
	"landlord/internal/ports"
)

const systemPrompt = `You are an expert Dou Di Zhu (Fight the Landlord) player.
Three players use a 54-card deck: one landlord against two allied peasants.
The landlord leads first; play passes seat 0 -> 1 -> 2. When both other
players pass, the last player to play leads again. The side that empties a
hand first wins.

Patterns: single, pair, trio, trio with one single, trio with one pair,
straight (5+ consecutive singles), pair straight (3+ consecutive pairs),
plane (2+ consecutive trios) optionally with one single or one pair per trio,
bomb (four of a rank), rocket (both jokers). Twos and jokers never appear in
chains. A follow must use the same pattern and length with a higher rank;
bombs beat every other pattern and the rocket beats everything.

Ranks from low to high: 3 4 5 6 7 8 9 10 J Q K A 2 w W (w = black joker,
W = red joker). Answer briefly.`

func faces(cards []domain.Card) string {
	if len(cards) == 0 {
		return "none"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Rank().String()
	}
	return strings.Join(parts, " ")
}

func role(landlord bool) string {
	if landlord {
		return "landlord"
	}
	return "peasant"
}

func bidPrompt(hand domain.Hand, history []domain.BidRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your hand: %s\n", faces(hand.Cards()))
	if len(history) == 0 {
		b.WriteString("No bids yet.\n")
	} else {
		b.WriteString("Bids so far:")
		for _, rec := range history {
			fmt.Fprintf(&b, " seat %d bid %d;", rec.Seat, rec.Bid)
		}
		b.WriteString("\n")
	}
	b.WriteString("Bid 0 to pass or 1-3 to claim the landlord. A bid only counts if it is higher than every earlier bid.\n")
	b.WriteString("Reply with the number inside tags, for example <answer>1</answer>.")
	return b.String()
}

func playPrompt(hand domain.Hand, pc ports.PlayContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your hand: %s\n", faces(hand.Cards()))
	fmt.Fprintf(&b, "Your seat: %d, role: %s\n", pc.Seat, role(pc.IsLandlord))
	fmt.Fprintf(&b, "Cards left per seat: %d %d %d\n", pc.CardsLeft[0], pc.CardsLeft[1], pc.CardsLeft[2])
	if pc.IsFollow {
		fmt.Fprintf(&b, "Seat %d (%s) played: %s\n", pc.LastPlayerSeat, role(pc.LastPlayerIsLandlord), faces(pc.LastPlayed))
		b.WriteString("Beat it with the same pattern or a bomb/rocket, or pass with <answer>PASS</answer>.\n")
	} else {
		b.WriteString("You lead this trick and must play a valid pattern. Shedding low cards early is usually good.\n")
	}
	b.WriteString("List only the card faces inside tags, for example <answer>3 4 5 6 7</answer>.")
	return b.String()
}
