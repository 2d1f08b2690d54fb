package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

const botIDPrefix = "bot-"

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	// Kind selects the provider, see config.SeatRule and friends.
	Kind   string `json:"kind"`
	Script string `json:"script,omitempty"`
}

// Roster is the pool of bot accounts that may fill empty seats.
type Roster struct {
	identities []BotIdentity
	byID       map[string]int
}

// NewRoster indexes identities by user id.
func NewRoster(identities []BotIdentity) *Roster {
	r := &Roster{identities: identities, byID: make(map[string]int, len(identities))}
	r.reindex()
	return r
}

func (r *Roster) reindex() {
	for k := range r.byID {
		delete(r.byID, k)
	}
	for i, identity := range r.identities {
		if identity.UserID != "" {
			r.byID[identity.UserID] = i
		}
	}
}

// LoadRoster reads a JSON array of identities.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []BotIdentity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(identities), nil
}

// Identity returns the bot for a seat index, generating one when the pool is empty.
func (r *Roster) Identity(index int) BotIdentity {
	if len(r.identities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", botIDPrefix, index),
			Username:    fmt.Sprintf("%s%d", botIDPrefix, index),
			DisplayName: fmt.Sprintf("AI Player %d", index+1),
		}
	}
	return r.identities[index%len(r.identities)]
}

// IsBot reports whether userID belongs to the roster or is a generated bot id.
func (r *Roster) IsBot(userID string) bool {
	if _, ok := r.byID[userID]; ok {
		return true
	}
	return len(r.identities) == 0 && strings.HasPrefix(userID, botIDPrefix)
}

// DisplayName returns the bot's display name, or "" for non-bots.
func (r *Roster) DisplayName(userID string) string {
	if i, ok := r.byID[userID]; ok {
		if name := r.identities[i].DisplayName; name != "" {
			return name
		}
		return r.identities[i].Username
	}
	if r.IsBot(userID) {
		return userID
	}
	return ""
}

// Provision creates or refreshes the Nakama accounts of identities that carry a device id.
func (r *Roster) Provision(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	for i := range r.identities {
		identity := &r.identities[i]
		if identity.DeviceID == "" {
			continue
		}
		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
			continue
		}
		identity.UserID = userID
		identity.Username = username

		metadata := map[string]interface{}{"is_bot": true, "kind": identity.Kind}
		if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
		}
		logger.Info("ProvisionBots: Bot %s (%s) is ready.", identity.DisplayName, userID)
	}
	r.reindex()
}
