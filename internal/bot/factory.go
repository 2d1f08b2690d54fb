package bot

import (
	"fmt"

	"landlord/internal/config"
	"landlord/internal/llm"
	"landlord/internal/ports"
	"landlord/internal/script"

	"github.com/heroiclabs/nakama-common/runtime"
)

// AllyPolicyFrom converts the ally section of the config.
func AllyPolicyFrom(c config.AllyConfig) AllyPolicy {
	return AllyPolicy{
		Enabled:           c.Enabled,
		CheapPlayMax:      c.CheapPlayMax,
		SpareCardsMin:     c.SpareCardsMin,
		KeepOverrideAbove: c.KeepOverrideAbove,
	}
}

// NewProvider creates the decision provider configured for a seat.
func NewProvider(seat config.SeatConfig, cfg *config.Config, logger runtime.Logger) (ports.DecisionProvider, error) {
	switch seat.Kind {
	case config.SeatRule, "":
		return NewRuleProvider(AllyPolicyFrom(cfg.Ally)), nil
	case config.SeatLLM:
		client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Temperature)
		return llm.NewProvider(client, logger, cfg.LLM.MaxAttempts, cfg.LLM.Backoff), nil
	case config.SeatScript:
		return script.Load(seat.Script)
	default:
		return nil, fmt.Errorf("unknown seat kind: %q", seat.Kind)
	}
}

// NewProviders creates the three seat providers in seat order.
func NewProviders(cfg *config.Config, logger runtime.Logger) ([]ports.DecisionProvider, error) {
	out := make([]ports.DecisionProvider, 0, len(cfg.Seats))
	for i, seat := range cfg.Seats {
		p, err := NewProvider(seat, cfg, logger.WithField("seat", i))
		if err != nil {
			return nil, fmt.Errorf("seat %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}
