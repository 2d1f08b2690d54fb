package domain

import (
	"fmt"
	"sort"
)

// Counts maps a Rank to the number of cards of that rank.
type Counts [RankRedJoker + 1]int

// RankCounts tallies cards per rank.
func RankCounts(cards []Card) Counts {
	var counts Counts
	for _, c := range cards {
		counts[c.Rank()]++
	}
	return counts
}

// Hand is the set of cards held by one seat, ordered by rank then id.
type Hand struct {
	cards []Card
}

// NewHand builds a hand from cards; the input slice is copied.
func NewHand(cards []Card) Hand {
	h := Hand{cards: append([]Card(nil), cards...)}
	SortCards(h.cards)
	return h
}

// SortCards orders cards by ascending rank, then id.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		ri, rj := cards[i].Rank(), cards[j].Rank()
		if ri != rj {
			return ri < rj
		}
		return cards[i] < cards[j]
	})
}

// Cards returns a copy of the held cards.
func (h Hand) Cards() []Card {
	return append([]Card(nil), h.cards...)
}

func (h Hand) Len() int {
	return len(h.cards)
}

func (h Hand) Empty() bool {
	return len(h.cards) == 0
}

// Counts returns the rank -> count mapping of the hand.
func (h Hand) Counts() Counts {
	return RankCounts(h.cards)
}

// Has reports whether the hand holds card c.
func (h Hand) Has(c Card) bool {
	for _, held := range h.cards {
		if held == c {
			return true
		}
	}
	return false
}

// Contains reports whether every card is held, each id at most once.
func (h Hand) Contains(cards []Card) bool {
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] || !h.Has(c) {
			return false
		}
		seen[c] = true
	}
	return true
}

// Take returns the n lowest-id cards of rank r, or nil when fewer are held.
func (h Hand) Take(r Rank, n int) []Card {
	out := make([]Card, 0, n)
	for _, c := range h.cards {
		if len(out) == n {
			break
		}
		if c.Rank() == r {
			out = append(out, c)
		}
	}
	if len(out) < n {
		return nil
	}
	return out
}

// Remove deletes cards from the hand. Nothing changes when a card is missing.
func (h *Hand) Remove(cards []Card) error {
	if !h.Contains(cards) {
		return fmt.Errorf("remove %s: %w", FormatCards(cards), ErrIllegalSubset)
	}
	drop := make(map[Card]bool, len(cards))
	for _, c := range cards {
		drop[c] = true
	}
	kept := h.cards[:0:0]
	for _, c := range h.cards {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	h.cards = kept
	return nil
}

// Add inserts cards that are not already held.
func (h *Hand) Add(cards []Card) error {
	for i, c := range cards {
		if !c.Valid() || h.Has(c) {
			return fmt.Errorf("add %s: %w", c, ErrDeckIntegrity)
		}
		for _, prev := range cards[:i] {
			if prev == c {
				return fmt.Errorf("add %s twice: %w", c, ErrDeckIntegrity)
			}
		}
	}
	h.cards = append(h.cards, cards...)
	SortCards(h.cards)
	return nil
}

// Equal reports whether both hands hold exactly the same cards.
func (h Hand) Equal(other Hand) bool {
	if len(h.cards) != len(other.cards) {
		return false
	}
	for i := range h.cards {
		if h.cards[i] != other.cards[i] {
			return false
		}
	}
	return true
}

func (h Hand) String() string {
	return FormatCards(h.cards)
}
