package domain

import (
	"strings"
	"testing"
)

// cards builds cards from space separated face labels, giving repeated faces
// successive suits.
func cards(t *testing.T, labels string) []Card {
	t.Helper()
	used := map[Rank]int{}
	var out []Card
	for _, label := range strings.Fields(labels) {
		r, ok := ParseFace(label)
		if !ok {
			t.Fatalf("bad face label %q", label)
		}
		all := r.Cards()
		if used[r] >= len(all) {
			t.Fatalf("too many %q", label)
		}
		out = append(out, all[used[r]])
		used[r]++
	}
	return out
}
