package domain

// Outcome is the verdict of Validate.
type Outcome int

const (
	OutcomeLegal Outcome = iota
	OutcomeIllegalSubset
	OutcomeIllegalPattern
	OutcomeIllegalFollow
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLegal:
		return "legal"
	case OutcomeIllegalSubset:
		return "illegal_subset"
	case OutcomeIllegalPattern:
		return "illegal_pattern"
	case OutcomeIllegalFollow:
		return "illegal_follow"
	}
	return "unknown"
}

// Err maps the outcome onto its sentinel error, nil when legal.
func (o Outcome) Err() error {
	switch o {
	case OutcomeIllegalSubset:
		return ErrIllegalSubset
	case OutcomeIllegalPattern:
		return ErrIllegalPattern
	case OutcomeIllegalFollow:
		return ErrIllegalFollow
	}
	return nil
}

// Trick is the last accepted play of the current round of follows.
type Trick struct {
	Seat  int
	Cards []Card
	Play  Play
}

// Validate checks a proposed play against the hand and, when last is not
// nil, against the trick being followed. An empty proposal is a pass.
func Validate(hand Hand, proposed []Card, last *Trick) Outcome {
	if !hand.Contains(proposed) {
		return OutcomeIllegalSubset
	}
	if len(proposed) == 0 {
		if last == nil {
			// A lead is mandatory.
			return OutcomeIllegalPattern
		}
		return OutcomeLegal
	}
	play := Classify(proposed)
	if !play.Valid() {
		return OutcomeIllegalPattern
	}
	if last == nil {
		return OutcomeLegal
	}
	if !Comparable(play, last.Play) || !Beats(play, last.Play) {
		return OutcomeIllegalFollow
	}
	return OutcomeLegal
}
