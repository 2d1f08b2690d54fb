package domain

// PatternType is the shape of a played set of cards.
type PatternType int

const (
	Invalid PatternType = iota
	Single
	Pair
	Trio
	TrioSingle
	TrioPair
	Straight         // 5+ consecutive singles
	PairStraight     // 3+ consecutive pairs
	Plane            // 2+ consecutive trios
	PlaneWithSingles // plane plus one single wing per trio
	PlaneWithPairs   // plane plus one pair wing per trio
	Bomb
	Rocket
)

const (
	minStraightLen     = 5
	minPairStraightLen = 3
	minPlaneLen        = 2
)

var patternNames = map[PatternType]string{
	Invalid:          "invalid",
	Single:           "single",
	Pair:             "pair",
	Trio:             "trio",
	TrioSingle:       "trio_single",
	TrioPair:         "trio_pair",
	Straight:         "straight",
	PairStraight:     "pair_straight",
	Plane:            "plane",
	PlaneWithSingles: "plane_single",
	PlaneWithPairs:   "plane_pair",
	Bomb:             "bomb",
	Rocket:           "rocket",
}

func (t PatternType) String() string {
	if name, ok := patternNames[t]; ok {
		return name
	}
	return "unknown"
}

// Play is a classified set of cards.
type Play struct {
	Type PatternType
	// Rank is the comparison key: the grouped rank, or the lowest rank of a run.
	Rank  Rank
	Count int
	// Length is the number of ranks in a run: straight ranks, pair-straight pairs or plane trios.
	Length int
}

func (p Play) Valid() bool {
	return p.Type != Invalid
}

// IsOverride reports whether the play may beat a trick of a different shape.
func (p Play) IsOverride() bool {
	return p.Type == Bomb || p.Type == Rocket
}

// Classify determines the shape of cards. Empty input, duplicates and
// out-of-range ids classify as Invalid.
func Classify(cards []Card) Play {
	invalid := Play{Type: Invalid, Count: len(cards)}
	if len(cards) == 0 {
		return invalid
	}
	seen := make(map[Card]bool, len(cards))
	for _, c := range cards {
		if !c.Valid() || seen[c] {
			return invalid
		}
		seen[c] = true
	}

	counts := RankCounts(cards)
	n := len(cards)
	jokers := counts[RankBlackJoker] + counts[RankRedJoker]

	switch {
	case n == 1:
		return Play{Type: Single, Rank: cards[0].Rank(), Count: 1, Length: 1}
	case n == 2 && jokers == 2:
		return Play{Type: Rocket, Rank: RankRedJoker, Count: 2}
	}
	if jokers > 0 {
		return invalid
	}

	var groups [5][]Rank // ranks held 1..4 times, ascending
	for r := RankThree; r <= RankTwo; r++ {
		if c := counts[r]; c > 0 {
			groups[c] = append(groups[c], r)
		}
	}
	distinct := len(groups[1]) + len(groups[2]) + len(groups[3]) + len(groups[4])

	if distinct == 1 {
		r := cards[0].Rank()
		switch n {
		case 2:
			return Play{Type: Pair, Rank: r, Count: 2, Length: 1}
		case 3:
			return Play{Type: Trio, Rank: r, Count: 3, Length: 1}
		case 4:
			return Play{Type: Bomb, Rank: r, Count: 4, Length: 1}
		}
	}

	if distinct == 2 && len(groups[3]) == 1 {
		trio := groups[3][0]
		switch {
		case n == 4 && len(groups[1]) == 1:
			if !groups[1][0].Ordinary() {
				return invalid
			}
			return Play{Type: TrioSingle, Rank: trio, Count: 4, Length: 1}
		case n == 5 && len(groups[2]) == 1:
			return Play{Type: TrioPair, Rank: trio, Count: 5, Length: 1}
		}
	}

	if p, ok := classifyChain(groups, n); ok {
		return p
	}
	return invalid
}

func classifyChain(groups [5][]Rank, n int) (Play, bool) {
	singles, pairs, trios, quads := groups[1], groups[2], groups[3], groups[4]
	if len(quads) > 0 {
		return Play{}, false
	}

	switch {
	case len(pairs) == 0 && len(trios) == 0 && len(singles) >= minStraightLen && isChain(singles):
		return Play{Type: Straight, Rank: singles[0], Count: n, Length: len(singles)}, true
	case len(singles) == 0 && len(trios) == 0 && len(pairs) >= minPairStraightLen && isChain(pairs):
		return Play{Type: PairStraight, Rank: pairs[0], Count: n, Length: len(pairs)}, true
	}

	k := len(trios)
	if k < minPlaneLen || !isChain(trios) {
		return Play{}, false
	}
	switch {
	case len(singles) == 0 && len(pairs) == 0:
		return Play{Type: Plane, Rank: trios[0], Count: n, Length: k}, true
	case len(pairs) == 0 && len(singles) == k && allOrdinary(singles):
		return Play{Type: PlaneWithSingles, Rank: trios[0], Count: n, Length: k}, true
	case len(singles) == 0 && len(pairs) == k && allOrdinary(pairs):
		return Play{Type: PlaneWithPairs, Rank: trios[0], Count: n, Length: k}, true
	}
	return Play{}, false
}

// isChain reports whether ascending ranks are consecutive and stay within 3..A.
func isChain(ranks []Rank) bool {
	if len(ranks) == 0 || ranks[len(ranks)-1] > MaxChainRank {
		return false
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i] != ranks[i-1]+1 {
			return false
		}
	}
	return true
}

func allOrdinary(ranks []Rank) bool {
	for _, r := range ranks {
		if !r.Ordinary() {
			return false
		}
	}
	return true
}

// Comparable reports whether a and b may be ordered against each other.
func Comparable(a, b Play) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	if a.IsOverride() || b.IsOverride() {
		return true
	}
	return a.Type == b.Type && a.Count == b.Count && a.Length == b.Length
}

// Compare orders two comparable plays: 1 when a beats b, -1 when b beats a.
// Non-comparable plays yield 0.
func Compare(a, b Play) int {
	if !Comparable(a, b) {
		return 0
	}
	switch {
	case a.Type == Rocket && b.Type == Rocket:
		return 0
	case a.Type == Rocket:
		return 1
	case b.Type == Rocket:
		return -1
	case a.Type == Bomb && b.Type != Bomb:
		return 1
	case b.Type == Bomb && a.Type != Bomb:
		return -1
	}
	switch {
	case a.Rank > b.Rank:
		return 1
	case a.Rank < b.Rank:
		return -1
	}
	return 0
}

// Beats reports whether a may be played on top of b.
func Beats(a, b Play) bool {
	return Compare(a, b) > 0
}
