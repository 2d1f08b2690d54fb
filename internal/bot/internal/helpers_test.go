package internal

import (
	"strings"
	"testing"

	"landlord/internal/domain"
)

func cardsOf(t *testing.T, labels string) []domain.Card {
	t.Helper()
	used := map[domain.Rank]int{}
	var out []domain.Card
	for _, label := range strings.Fields(labels) {
		r, ok := domain.ParseFace(label)
		if !ok {
			t.Fatalf("bad face label %q", label)
		}
		out = append(out, r.Cards()[used[r]])
		used[r]++
	}
	return out
}
