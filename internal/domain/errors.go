package domain

import "errors"

var (
	ErrIllegalSubset   = errors.New("cards not held by seat")
	ErrIllegalPattern  = errors.New("cards do not form a valid pattern")
	ErrIllegalFollow   = errors.New("play does not beat the current trick")
	ErrProviderTimeout = errors.New("decision provider timed out")
	ErrProviderError   = errors.New("decision provider failed")
	ErrNoLandlordBid   = errors.New("nobody bid for landlord")
	ErrDeckIntegrity   = errors.New("deck integrity violated")
)
