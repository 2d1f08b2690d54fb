package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"landlord/internal/app"
	"landlord/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RpcFindMatchHandler returns any match of this game with an open seat,
// creating one when none exists.
//
// Payload: unused.
// Returns: the match id.
func RpcFindMatchHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:%s +label.%s:>=1", MatchLabelKey_Game, GameLabel, MatchLabelKey_OpenSeats)
	minSize := 0
	maxSize := domain.Seats

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}
	if len(matches) > 0 {
		matchID := matches[0].MatchId
		logger.Info("RpcFindMatch [User:%s]: Found existing match %s", userID, matchID)
		return matchID, nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameLandlord, nil)
	if err != nil {
		logger.Error("RpcFindMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcFindMatch [User:%s]: Created new match %s", userID, matchID)
	return matchID, nil
}

// LocateRoomResponse names the node hosting a room.
type LocateRoomResponse struct {
	RoomID string `json:"room_id"`
	Node   string `json:"node"`
}

// rpcLocateRoom answers {"room_id": id} with the hosting node, consulting the
// shared directory for rooms on other nodes.
func rpcLocateRoom(registry *app.Registry) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
		var req struct {
			RoomID string `json:"room_id"`
		}
		if err := json.Unmarshal([]byte(payload), &req); err != nil || req.RoomID == "" {
			return "", runtime.NewError("room_id is required", 3)
		}
		node, err := registry.Locate(ctx, req.RoomID)
		if errors.Is(err, app.ErrRoomNotFound) {
			return "", runtime.NewError("room not found", 5)
		}
		if err != nil {
			logger.Error("RpcLocateRoom: Failed to locate %s: %v", req.RoomID, err)
			return "", err
		}
		b, err := json.Marshal(LocateRoomResponse{RoomID: req.RoomID, Node: node})
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
