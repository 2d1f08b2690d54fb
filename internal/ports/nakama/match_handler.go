package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"
	"landlord/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	phaseLobby   = "lobby"
	phasePlaying = "playing"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats                [domain.Seats]string        `json:"seats"`      // User IDs, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"` // Seat index of the match owner
	Tick                 int64                       `json:"tick"`
	Presences            map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	Service              *app.Service                `json:"-"`
	Table                *app.Table                  `json:"-"` // Current round (nil in lobby)
	LastResult           *app.Result                 `json:"-"`
	Roster               *bot.Roster                 `json:"-"`
	Config               *config.Config              `json:"-"`
	Publisher            ports.EventPublisher        `json:"-"`
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotMinDelay          int                         `json:"bot_min_delay"`
	BotMaxDelay          int                         `json:"bot_max_delay"`
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`
	BotWaitUntil         int64                       `json:"bot_wait_until"` // Tick when the bot should act
	TurnSeconds          int                         `json:"turn_seconds"`
	TurnDeadline         int64                       `json:"turn_deadline"` // Tick when a human's turn is played for them
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"`
	Bots                 map[string]*bot.Agent       `json:"-"`

	pending []app.Event
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !ms.Roster.IsBot(seat) {
			count++
		}
	}
	return count
}

// seatOf returns the seat of userID or -1.
func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) inRound() bool {
	return ms.Table != nil
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(roster *bot.Roster, seats []string) int {
	for i, userID := range seats {
		if userID != "" && !roster.IsBot(userID) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(roster *bot.Roster, seats []string) bool {
	return findFirstHumanSeat(roster, seats) == -1
}

type matchHandler struct {
	cfg       *config.Config
	roster    *bot.Roster
	publisher ports.EventPublisher
	registry  *app.Registry
}

func newMatchHandler(cfg *config.Config, roster *bot.Roster, publisher ports.EventPublisher, registry *app.Registry) *matchHandler {
	return &matchHandler{cfg: cfg, roster: roster, publisher: publisher, registry: registry}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	state := &MatchState{
		Tick:             time.Now().Unix(),
		Presences:        make(map[string]runtime.Presence),
		Service:          app.NewService(nil, mh.cfg.Game.MaxRedeals),
		OwnerSeat:        -1,
		Roster:           mh.roster,
		Config:           mh.cfg,
		Publisher:        mh.publisher,
		Bots:             make(map[string]*bot.Agent),
		BotsEnabled:      mh.cfg.Bots.Enabled,
		BotMinDelay:      mh.cfg.Bots.MinDelaySec,
		BotMaxDelay:      mh.cfg.Bots.MaxDelaySec,
		BotAutoFillDelay: mh.cfg.Bots.AutoFillDelaySec,
		TurnSeconds:      mh.cfg.Bots.TurnSeconds,
	}

	// Runtime env overrides the file config.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env[envBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	envInt(env, envBotMinDelay, &state.BotMinDelay)
	envInt(env, envBotMaxDelay, &state.BotMaxDelay)
	envInt(env, envBotAutoFillDelay, &state.BotAutoFillDelay)
	envInt(env, envTurnSeconds, &state.TurnSeconds)
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}

	label, err := matchLabel(state.GetOpenSeatsCount(), phaseLobby)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func envInt(env map[string]string, key string, dst *int) {
	if val, ok := env[key]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat or a bot to replace before the round starts.
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if !matchState.inRound() {
			for _, seat := range matchState.Seats {
				if matchState.Roster.IsBot(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		assigned := false
		if !matchState.inRound() {
			for i, seatUserID := range matchState.Seats {
				if seatUserID == "" {
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
			if !assigned {
				for i, seatUserID := range matchState.Seats {
					if matchState.Roster.IsBot(seatUserID) {
						logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, p.GetUserId(), i)
						delete(matchState.Bots, seatUserID)
						matchState.Seats[i] = p.GetUserId()
						assigned = true
						break
					}
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined as a spectator, no seat was available.", p.GetUserId())
		}
	}

	if !isHumanSeat(matchState, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Roster, matchState.Seats[:])
		logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func isHumanSeat(state *MatchState, seat int) bool {
	if !domain.ValidSeat(seat) {
		return false
	}
	userID := state.Seats[seat]
	return userID != "" && !state.Roster.IsBot(userID)
}

// MatchLeave frees seats. During a round a bot takes over the leaving seat.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		seat := matchState.seatOf(p.GetUserId())
		if seat < 0 {
			continue
		}
		matchState.Seats[seat] = ""
		logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), seat)
		if matchState.inRound() {
			mh.seatBot(matchState, seat, logger)
		}
	}

	if shouldTerminateNoHumans(matchState.Roster, matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		mh.closeTable(ctx, matchState)
		return nil
	}

	if !isHumanSeat(matchState, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Roster, matchState.Seats[:])
		logger.Debug("MatchLeave: Owner set to human seat %d.", matchState.OwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpBid:
			mh.handleBid(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCards:
			mh.handlePlayCards(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.autoFill(matchState, dispatcher, logger)
	}
	mh.processBots(ctx, matchState, dispatcher, logger)
	mh.processTurnDeadline(ctx, matchState, dispatcher, logger)

	return matchState
}

// seatBot puts a roster bot into seat and, during a round, hands it the seat's provider.
func (mh *matchHandler) seatBot(state *MatchState, seat int, logger runtime.Logger) bool {
	identity, ok := freeIdentity(state, seat)
	if !ok {
		logger.Warn("processBots: No free bot identity for seat %d", seat)
		return false
	}
	agent, err := bot.NewAgent(identity, state.Config, logger)
	if err != nil {
		logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
		return false
	}
	state.Seats[seat] = identity.UserID
	state.Bots[identity.UserID] = agent
	if state.Table != nil {
		state.Table.SetProvider(seat, agent.Provider)
	}
	logger.Info("processBots: Added bot %s (%s) to seat %d", identity.DisplayName, identity.UserID, seat)
	return true
}

// freeIdentity picks the roster bot for seat, skipping bots already seated.
func freeIdentity(state *MatchState, seat int) (bot.BotIdentity, bool) {
	for k := 0; k < domain.Seats*4; k++ {
		identity := state.Roster.Identity(seat + k)
		if state.seatOf(identity.UserID) < 0 {
			return identity, true
		}
	}
	return bot.BotIdentity{}, false
}

// autoFill seats bots in the lobby once humans have waited long enough.
func (mh *matchHandler) autoFill(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.inRound() || state.GetHumanPlayerCount() < app.MinHumansToStart || state.GetOpenSeatsCount() == 0 {
		state.LastSinglePlayerTick = 0
		return
	}
	if state.LastSinglePlayerTick == 0 {
		state.LastSinglePlayerTick = state.Tick
		logger.Debug("processBots: Open seats detected, starting auto-fill timer.")
	}
	if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
		return
	}
	added := false
	for i, seat := range state.Seats {
		if seat == "" && mh.seatBot(state, i, logger) {
			added = true
		}
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
	state.LastSinglePlayerTick = 0
}

// processBots lets the bot whose turn it is act after its think delay.
func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.inRound() {
		state.BotWaitUntil = 0
		return
	}
	seat, ok := currentSeat(state.Table.Game)
	if !ok || !state.Roster.IsBot(state.Seats[seat]) {
		state.BotWaitUntil = 0
		return
	}
	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if state.BotMaxDelay > state.BotMinDelay {
			delay += rand.Intn(state.BotMaxDelay - state.BotMinDelay + 1)
		}
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", state.Seats[seat], seat, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	var err error
	if state.Table.Game.Phase == domain.PhaseBidding {
		err = state.Table.BidTurn(ctx)
	} else {
		err = state.Table.PlayTurn(ctx)
	}
	if err != nil {
		logger.Error("processBots: Bot %s (seat %d) failed to move: %v", state.Seats[seat], seat, err)
	}
	mh.afterAction(ctx, state, dispatcher, logger)
}

// processTurnDeadline moves for a human who let the turn clock run out.
func (mh *matchHandler) processTurnDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.inRound() || state.TurnSeconds <= 0 {
		state.TurnDeadline = 0
		return
	}
	seat, ok := currentSeat(state.Table.Game)
	if !ok || state.Roster.IsBot(state.Seats[seat]) {
		state.TurnDeadline = 0
		return
	}
	if state.TurnDeadline == 0 {
		state.TurnDeadline = state.Tick + int64(state.TurnSeconds)
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}

	logger.Info("TurnDeadline: Seat %d ran out of time, moving for it.", seat)
	var err error
	if state.Table.Game.Phase == domain.PhaseBidding {
		err = state.Table.SubmitBid(ctx, seat, 0)
	} else {
		err = state.Table.AutoPlay(ctx, seat)
	}
	if err != nil {
		logger.Error("TurnDeadline: Failed to move for seat %d: %v", seat, err)
	}
	mh.afterAction(ctx, state, dispatcher, logger)
}

// currentSeat returns the seat expected to act.
func currentSeat(game *domain.Game) (int, bool) {
	switch game.Phase {
	case domain.PhaseBidding:
		return game.BidTurn, true
	case domain.PhasePlaying:
		return game.Turn, true
	}
	return -1, false
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)
	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d)", senderID, senderSeat, state.OwnerSeat)

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, app.ErrNotYourTurn)
		return
	}
	if state.inRound() {
		mh.sendError(state, dispatcher, logger, senderID, app.ErrWrongPhase)
		return
	}
	if state.GetHumanPlayerCount() < app.MinHumansToStart {
		logger.Warn("StartGame: Cannot start without humans.")
		return
	}
	for i, seat := range state.Seats {
		if seat == "" && !mh.seatBot(state, i, logger) {
			logger.Error("StartGame: Seat %d is empty and no bot could take it.", i)
			return
		}
	}

	providers := make([]ports.DecisionProvider, domain.Seats)
	for i, userID := range state.Seats {
		if agent, ok := state.Bots[userID]; ok {
			providers[i] = agent.Provider
		}
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	if matchID == "" {
		matchID = uuid.NewString()
	}
	opts := app.TableOptions{
		Timeout:   state.Config.Game.DecisionTimeout,
		Ally:      bot.AllyPolicyFrom(state.Config.Ally),
		Publisher: state.Publisher,
		Sink:      func(ev app.Event) { state.pending = append(state.pending, ev) },
	}
	table, err := mh.registry.Adopt(ctx, matchID, func(roomID string) (*app.Table, error) {
		return app.NewTable(domain.NewGame(roomID), state.Service, providers, opts, logger)
	})
	if err != nil {
		logger.Error("StartGame: Failed to create table: %v", err)
		return
	}
	state.Table = table
	state.LastResult = nil
	if err := table.Deal(ctx); err != nil {
		logger.Error("StartGame: Failed to deal: %v", err)
		mh.closeTable(ctx, state)
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastMatchState(state, dispatcher, logger)
	mh.afterAction(ctx, state, dispatcher, logger)
	logger.Info("StartGame: Round started in match %s.", matchID)
}

func (mh *matchHandler) handleBid(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.inRound() {
		logger.Warn("handleBid: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, app.ErrWrongPhase)
		return
	}
	request, err := decodeRequest(msg.GetData())
	if err != nil {
		logger.Warn("handleBid: Invalid request from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	bid, err := bidFromRequest(request)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if err := state.Table.SubmitBid(ctx, state.seatOf(senderID), bid); err != nil {
		logger.Warn("handleBid: User %s failed to bid %d: %v", senderID, bid, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.afterAction(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) handlePlayCards(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.inRound() {
		logger.Warn("handlePlayCards: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, app.ErrWrongPhase)
		return
	}
	request, err := decodeRequest(msg.GetData())
	if err != nil {
		logger.Error("handlePlayCards: Failed to decode request: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	cards, err := cardsFromRequest(request)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if len(cards) == 0 {
		mh.sendError(state, dispatcher, logger, senderID, domain.ErrIllegalPattern)
		return
	}
	mh.submitPlay(ctx, state, dispatcher, logger, senderID, cards)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.inRound() {
		logger.Warn("handlePassTurn: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, app.ErrWrongPhase)
		return
	}
	mh.submitPlay(ctx, state, dispatcher, logger, senderID, nil)
}

// submitPlay validates a human move first so illegal moves are reported, not repaired.
func (mh *matchHandler) submitPlay(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string, cards []domain.Card) {
	seat := state.seatOf(senderID)
	if err := state.Table.Validate(seat, cards); err != nil {
		logger.Warn("submitPlay: User %s (seat %d) rejected: %v. Requested: %s", senderID, seat, err, domain.FormatCards(cards))
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	if err := state.Table.SubmitPlay(ctx, seat, cards); err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.afterAction(ctx, state, dispatcher, logger)
}

// afterAction flushes queued events, resets turn timers and closes finished rounds.
func (mh *matchHandler) afterAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events := state.pending
	state.pending = nil
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	state.BotWaitUntil = 0
	state.TurnDeadline = 0

	if state.Table != nil && state.Table.Game.Phase == domain.PhaseRoundOver {
		res := state.Table.Result()
		state.LastResult = &res
		mh.closeTable(ctx, state)
		logger.Info("RoundOver: Seat %d won (landlord_won=%t, bid=%d).", res.Winner, res.LandlordWon, res.Bid)
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
}

type seatView struct {
	Seat        int    `json:"seat"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
	IsOwner     bool   `json:"is_owner"`
	IsLandlord  bool   `json:"is_landlord"`
	CardsLeft   int    `json:"cards_left"`
}

type stateView struct {
	Phase     string     `json:"phase"`
	Turn      int        `json:"turn"`
	OwnerSeat int        `json:"owner_seat"`
	Tick      int64      `json:"tick"`
	Players   []seatView `json:"players"`
	LastPlay  []int      `json:"last_play,omitempty"`
	Winner    int        `json:"winner"`
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	view := stateView{Phase: phaseLobby, Turn: -1, OwnerSeat: state.OwnerSeat, Tick: state.Tick, Winner: -1}
	var game *domain.Game
	if state.Table != nil {
		game = state.Table.Game
		view.Phase = string(game.Phase)
		if seat, ok := currentSeat(game); ok {
			view.Turn = seat
		}
		if game.Last != nil {
			for _, c := range game.Last.Cards {
				view.LastPlay = append(view.LastPlay, int(c))
			}
		}
	}
	if state.LastResult != nil {
		view.Winner = state.LastResult.Winner
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, ok := state.Presences[userID]; ok {
			displayName = p.GetUsername()
		} else if name := state.Roster.DisplayName(userID); name != "" {
			displayName = name
		}
		sv := seatView{
			Seat:        i,
			UserID:      userID,
			DisplayName: displayName,
			IsBot:       state.Roster.IsBot(userID),
			IsOwner:     i == state.OwnerSeat,
		}
		if game != nil {
			sv.IsLandlord = game.IsLandlord(i)
			sv.CardsLeft = game.Hands[i].Len()
		}
		view.Players = append(view.Players, sv)
	}

	data, err := encodePayload(view)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to encode snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, data, nil, nil, true); err != nil {
		logger.Warn("broadcastMatchState: Failed to broadcast: %v", err)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	data, err := encodePayload(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if ev.Private() {
		for _, seat := range ev.Seats {
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}
		// Intended recipients that are not connected (bots) must not turn into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Warn("broadcastEvent: Failed to send %s: %v", ev.Kind, err)
	}
}

type gameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrIllegalSubset), errors.Is(err, domain.ErrIllegalPattern), errors.Is(err, domain.ErrIllegalFollow):
		return 422
	case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, app.ErrWrongPhase):
		return 409
	}
	return 400
}

// sendError sends a game error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	data, err := encodePayload(gameError{Code: errorCode(cause), Message: cause.Error()})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("sendError: Failed to send to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := phaseLobby
	if state.inRound() {
		phase = phasePlaying
	}
	label, err := matchLabel(state.GetOpenSeatsCount(), phase)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// closeTable ends the current round's table and drops it from the registry.
func (mh *matchHandler) closeTable(ctx context.Context, state *MatchState) {
	if state.Table == nil {
		return
	}
	mh.registry.Remove(ctx, state.Table.Game.ID)
	state.Table = nil
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok {
		mh.closeTable(ctx, matchState)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
