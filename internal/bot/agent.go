package bot

import (
	"landlord/internal/config"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Agent is a bot occupying a seat.
type Agent struct {
	Identity BotIdentity
	Provider ports.DecisionProvider
}

// NewAgent builds the agent's provider from its identity.
func NewAgent(identity BotIdentity, cfg *config.Config, logger runtime.Logger) (*Agent, error) {
	seat := config.SeatConfig{Kind: identity.Kind, Script: identity.Script}
	p, err := NewProvider(seat, cfg, logger.WithField("bot", identity.UserID))
	if err != nil {
		return nil, err
	}
	return &Agent{Identity: identity, Provider: p}, nil
}
