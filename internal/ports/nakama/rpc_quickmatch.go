package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"landlord/internal/app"
	"landlord/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer, registry *app.Registry) error {
	if err := initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch); err != nil {
		return err
	}
	if err := initializer.RegisterRpc(RpcFindMatch, RpcFindMatchHandler); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcLocateRoom, rpcLocateRoom(registry))
}

// quickMatchQuery selects lobbies of this game with a free seat.
func quickMatchQuery() string {
	return fmt.Sprintf("+label.%s:%s +label.%s:>=1 +label.%s:%s",
		MatchLabelKey_Game, GameLabel, MatchLabelKey_OpenSeats, MatchLabelKey_Phase, phaseLobby)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	limit := 10
	authoritative := true
	minSize := 1
	maxSize := domain.Seats - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Seat and owner assignment happens in MatchJoin.
	matchID, err := nk.MatchCreate(ctx, MatchNameLandlord, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
