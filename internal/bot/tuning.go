package bot

// AllyPolicy controls when a peasant lets a teammate's play stand instead of
// beating it. It never affects legality.
type AllyPolicy struct {
	Enabled bool
	// CheapPlayMax is the largest teammate play, in cards, considered cheap enough to leave alone.
	CheapPlayMax int
	// SpareCardsMin is how many cards must remain after answering for withholding to apply.
	SpareCardsMin int
	// KeepOverrideAbove keeps bombs and the rocket while the hand is larger than this.
	KeepOverrideAbove int
}

// DefaultAllyPolicy mirrors the thresholds the rule bots have always used.
var DefaultAllyPolicy = AllyPolicy{
	Enabled:           true,
	CheapPlayMax:      4,
	SpareCardsMin:     4,
	KeepOverrideAbove: 10,
}

// Withhold reports whether a peasant holding handLen cards should pass on a
// teammate's play of lastLen cards rather than answer with answerLen cards.
func (p AllyPolicy) Withhold(handLen, lastLen, answerLen int, override bool) bool {
	if !p.Enabled || answerLen == handLen {
		return false
	}
	if lastLen <= p.CheapPlayMax && handLen-answerLen > p.SpareCardsMin {
		return true
	}
	return override && handLen > p.KeepOverrideAbove
}
