package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"landlord/internal/domain"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Completer is the chat call a Provider depends on.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Provider asks a language model for bids and plays. Transport and parse
// failures surface as domain.ErrProviderError, deadline expiry as
// domain.ErrProviderTimeout.
type Provider struct {
	client      Completer
	logger      runtime.Logger
	maxAttempts int
	backoff     time.Duration
}

var _ ports.DecisionProvider = (*Provider)(nil)

// NewProvider wraps client; maxAttempts below 1 means a single attempt.
func NewProvider(client Completer, logger runtime.Logger, maxAttempts int, backoff time.Duration) *Provider {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Provider{client: client, logger: logger, maxAttempts: maxAttempts, backoff: backoff}
}

func (p *Provider) Bid(ctx context.Context, hand domain.Hand, history []domain.BidRecord) (int, error) {
	reply, err := p.ask(ctx, bidPrompt(hand, history))
	if err != nil {
		return 0, err
	}
	return ParseBid(reply)
}

func (p *Provider) Play(ctx context.Context, hand domain.Hand, pc ports.PlayContext) ([]domain.Card, error) {
	reply, err := p.ask(ctx, playPrompt(hand, pc))
	if err != nil {
		return nil, err
	}
	return ParsePlay(reply, hand)
}

// ask retries failed calls with exponential backoff.
func (p *Provider) ask(ctx context.Context, prompt string) (string, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			wait := p.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("llm retry: %w", domain.ErrProviderTimeout)
			case <-time.After(wait):
			}
		}
		reply, err := p.client.Complete(ctx, messages)
		if err == nil {
			p.logger.Debug("LLM: reply after %d attempt(s): %q", attempt+1, reply)
			return reply, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("llm call: %v: %w", err, domain.ErrProviderTimeout)
		}
		lastErr = err
		p.logger.Warn("LLM: attempt %d/%d failed: %v", attempt+1, p.maxAttempts, err)
	}
	if errors.Is(lastErr, domain.ErrProviderError) {
		return "", lastErr
	}
	return "", fmt.Errorf("llm call: %v: %w", lastErr, domain.ErrProviderError)
}
