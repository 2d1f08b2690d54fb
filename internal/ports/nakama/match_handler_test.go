package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"landlord/internal/app"
	"landlord/internal/bot"
	"landlord/internal/config"
	"landlord/internal/domain"
	"landlord/internal/logging"
	"landlord/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type testPresence struct {
	runtime.Presence
	userID string
}

func (p testPresence) GetUserId() string   { return p.userID }
func (p testPresence) GetUsername() string { return "name-" + p.userID }

type testMatchData struct {
	runtime.MatchData
	opCode int64
	data   []byte
	userID string
}

func (m testMatchData) GetOpCode() int64  { return m.opCode }
func (m testMatchData) GetData() []byte   { return m.data }
func (m testMatchData) GetUserId() string { return m.userID }

type sentMessage struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent   []sentMessage
	labels []string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.sent = append(md.sent, sentMessage{opCode: opCode, data: append([]byte(nil), data...), recipients: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labels = append(md.labels, label)
	return nil
}

func (md *mockDispatcher) byOpCode(op int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.sent {
		if m.opCode == op {
			out = append(out, m)
		}
	}
	return out
}

func decodeStruct(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	return st.AsMap()
}

func testEnvContext() context.Context {
	env := map[string]string{
		envBotMinDelay:      "0",
		envBotMaxDelay:      "0",
		envBotAutoFillDelay: "0",
		envTurnSeconds:      "1",
	}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, env)
	return context.WithValue(ctx, runtime.RUNTIME_CTX_MATCH_ID, "match-1")
}

func newTestMatch(t *testing.T) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	registry := app.NewRegistry("local", nil, logging.Nop())
	handler := newMatchHandler(config.Default(), bot.NewRoster(nil), nil, registry)
	raw, tickRate, label := handler.MatchInit(testEnvContext(), logging.Nop(), nil, nil, nil)
	if tickRate != 1 || label == "" {
		t.Fatalf("MatchInit returned tick rate %d, label %q", tickRate, label)
	}
	return handler, raw.(*MatchState), &mockDispatcher{}
}

func TestFindFirstHumanSeat(t *testing.T) {
	roster := bot.NewRoster(nil)
	bot1 := roster.Identity(0).UserID
	bot2 := roster.Identity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{name: "FirstHumanAfterBot", seats: []string{bot1, "user-1", ""}, want: 1},
		{name: "AllBots", seats: []string{bot1, bot2, ""}, want: -1},
		{name: "AllEmpty", seats: []string{"", "", ""}, want: -1},
		{name: "FirstHumanIsSeatZero", seats: []string{"user-1", bot1, "user-2"}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(roster, test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
			if got := shouldTerminateNoHumans(roster, test.seats); got != (test.want == -1) {
				t.Fatalf("shouldTerminateNoHumans() = %t", got)
			}
		})
	}
}

func TestMatchLabel(t *testing.T) {
	tests := []struct {
		name  string
		open  int
		phase string
	}{
		{name: "LobbyState", open: 3, phase: phaseLobby},
		{name: "PlayingState", open: 0, phase: phasePlaying},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			label, err := matchLabel(test.open, test.phase)
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			var got map[string]interface{}
			if err := json.Unmarshal([]byte(label), &got); err != nil {
				t.Fatalf("Label is not JSON: %v", err)
			}
			if got["game"] != GameLabel || got["open"] != float64(test.open) || got["phase"] != test.phase {
				t.Errorf("Got label %v", got)
			}
		})
	}
}

func TestCardsFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{name: "ids", body: `{"cards":[3,16,53]}`, want: 3},
		{name: "empty body", body: ``, want: 0},
		{name: "no cards", body: `{}`, want: 0},
		{name: "out of range", body: `{"cards":[55]}`, wantErr: true},
		{name: "fraction", body: `{"cards":[3.5]}`, wantErr: true},
		{name: "not a list", body: `{"cards":"3"}`, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st, err := decodeRequest([]byte(test.body))
			if err != nil {
				t.Fatalf("decodeRequest: %v", err)
			}
			cards, err := cardsFromRequest(st)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %v", cards)
				}
				return
			}
			if err != nil || len(cards) != test.want {
				t.Fatalf("cardsFromRequest = %v, %v; want %d cards", cards, err, test.want)
			}
		})
	}

	if _, err := decodeRequest([]byte("{")); err == nil {
		t.Fatalf("expected malformed JSON to fail")
	}
	st, _ := decodeRequest([]byte(`{"bid":2}`))
	if bid, err := bidFromRequest(st); err != nil || bid != 2 {
		t.Fatalf("bidFromRequest = %d, %v", bid, err)
	}
}

func TestAutoFillAddsTwoBotsForSoloHuman(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	human := testPresence{userID: "user-1"}
	handler.MatchJoin(context.Background(), logging.Nop(), nil, nil, dispatcher, 1, state, []runtime.Presence{human})
	if state.OwnerSeat != 0 {
		t.Fatalf("OwnerSeat = %d, want 0", state.OwnerSeat)
	}

	handler.MatchLoop(context.Background(), logging.Nop(), nil, nil, dispatcher, 2, state, nil)

	if got := state.GetOpenSeatsCount(); got != 0 {
		t.Fatalf("Expected no open seats after auto-fill, got %d", got)
	}
	if len(state.Bots) != 2 {
		t.Fatalf("Expected 2 bots, got %d", len(state.Bots))
	}
	if len(dispatcher.labels) < 2 || len(dispatcher.byOpCode(OpMatchState)) < 2 {
		t.Fatalf("Expected match state broadcast and label update after auto-fill")
	}
}

func TestMatchPlaysToRoundOver(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	ctx := testEnvContext()
	human := testPresence{userID: "user-1"}
	handler.MatchJoin(ctx, logging.Nop(), nil, nil, dispatcher, 1, state, []runtime.Presence{human})
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 2, state, nil)

	start := testMatchData{opCode: OpStartGame, userID: "user-1"}
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 3, state, []runtime.MatchData{start})
	if state.Table == nil && state.LastResult == nil {
		t.Fatalf("Expected the round to start")
	}
	if state.Table != nil {
		if table, err := handler.registry.Get("match-1"); err != nil || table != state.Table {
			t.Fatalf("Round table not registered under the match id: %v", err)
		}
	}

	for tick := int64(4); tick < 2000 && state.Table != nil; tick++ {
		handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, tick, state, nil)
	}
	if state.Table != nil || state.LastResult == nil {
		t.Fatalf("Round did not finish")
	}
	if handler.registry.Len() != 0 {
		t.Fatalf("Finished round still registered")
	}
	if !domain.ValidSeat(state.LastResult.Winner) {
		t.Fatalf("Winner = %d", state.LastResult.Winner)
	}

	hands := dispatcher.byOpCode(OpHandDealt)
	if len(hands) == 0 {
		t.Fatalf("Expected the human's hand to be dealt")
	}
	for _, m := range hands {
		if len(m.recipients) != 1 || m.recipients[0].GetUserId() != "user-1" {
			t.Fatalf("Hand sent to %v, want only user-1", m.recipients)
		}
		payload := decodeStruct(t, m.data)
		if payload["seat"] != float64(0) {
			t.Fatalf("Human received hand of seat %v", payload["seat"])
		}
	}

	over := dispatcher.byOpCode(OpRoundOver)
	if len(over) != 1 {
		t.Fatalf("Expected one round over event, got %d", len(over))
	}
	payload := decodeStruct(t, over[0].data)
	if payload["winner"] != float64(state.LastResult.Winner) {
		t.Fatalf("round over payload %v", payload)
	}
	remaining, ok := payload["remaining"].([]interface{})
	if !ok || len(remaining) != domain.Seats {
		t.Fatalf("round over remaining %v", payload["remaining"])
	}
	for seat, hand := range remaining {
		cards, _ := hand.([]interface{})
		if len(cards) != len(state.LastResult.Remaining[seat]) {
			t.Fatalf("seat %d shows %d remaining cards, want %d", seat, len(cards), len(state.LastResult.Remaining[seat]))
		}
	}
}

func TestPlayBeforeStartSendsError(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	human := testPresence{userID: "user-1"}
	handler.MatchJoin(context.Background(), logging.Nop(), nil, nil, dispatcher, 1, state, []runtime.Presence{human})

	play := testMatchData{opCode: OpPlayCards, userID: "user-1", data: []byte(`{"cards":[3]}`)}
	handler.MatchLoop(context.Background(), logging.Nop(), nil, nil, dispatcher, 2, state, []runtime.MatchData{play})

	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 {
		t.Fatalf("Expected one error, got %d", len(errs))
	}
	if len(errs[0].recipients) != 1 || errs[0].recipients[0].GetUserId() != "user-1" {
		t.Fatalf("Error must be sent privately")
	}
	if payload := decodeStruct(t, errs[0].data); payload["code"] != float64(409) {
		t.Fatalf("error payload %v", payload)
	}
}

func TestIllegalHumanMoveIsRejected(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	ctx := testEnvContext()
	handler.MatchJoin(ctx, logging.Nop(), nil, nil, dispatcher, 1, state, []runtime.Presence{testPresence{userID: "user-1"}})
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 2, state, nil)
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 3, state, []runtime.MatchData{testMatchData{opCode: OpStartGame, userID: "user-1"}})

	game := state.Table.Game
	game.Phase = domain.PhasePlaying
	game.Landlord = 0
	game.Turn = 0
	game.Last = nil
	if err := game.Hands[0].Add(game.Bottom); err != nil {
		t.Fatalf("Add bottom: %v", err)
	}

	pass := testMatchData{opCode: OpPassTurn, userID: "user-1"}
	handler.handlePassTurn(ctx, state, dispatcher, logging.Nop(), pass)

	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 {
		t.Fatalf("Expected the pass on a lead to be rejected, got %d errors", len(errs))
	}
	if payload := decodeStruct(t, errs[0].data); payload["code"] != float64(422) {
		t.Fatalf("error payload %v", payload)
	}
	if game.Turn != 0 || game.Hands[0].Len() != domain.HandSize+domain.BottomSize {
		t.Fatalf("Rejected move changed the game")
	}
}

func TestLeaveMidRoundSeatsBot(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	ctx := testEnvContext()
	alice, bob := testPresence{userID: "alice"}, testPresence{userID: "bob"}
	handler.MatchJoin(ctx, logging.Nop(), nil, nil, dispatcher, 1, state, []runtime.Presence{alice, bob})
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 2, state, nil)
	handler.MatchLoop(ctx, logging.Nop(), nil, nil, dispatcher, 3, state, []runtime.MatchData{testMatchData{opCode: OpStartGame, userID: "alice"}})
	if state.Table == nil {
		t.Fatalf("Expected a round in progress")
	}

	next := handler.MatchLeave(ctx, logging.Nop(), nil, nil, dispatcher, 4, state, []runtime.Presence{bob})
	if next == nil {
		t.Fatalf("Match terminated while a human remains")
	}
	if !state.Roster.IsBot(state.Seats[1]) {
		t.Fatalf("Seat 1 = %q, want a bot", state.Seats[1])
	}
	if state.Table.Provider(1) == nil {
		t.Fatalf("Bot did not take over the seat's moves")
	}

	if handler.MatchLeave(ctx, logging.Nop(), nil, nil, dispatcher, 5, state, []runtime.Presence{alice}) != nil {
		t.Fatalf("Expected termination with no humans left")
	}
}

func TestBroadcastEventSkipsBotOnlyRecipients(t *testing.T) {
	handler, state, dispatcher := newTestMatch(t)
	state.Seats = [domain.Seats]string{"user-1", "bot-1", "bot-2"}
	state.Presences["user-1"] = testPresence{userID: "user-1"}

	ev := app.Event{Kind: app.EventHandDealt, Payload: app.HandDealtPayload{Seat: 1}, Seats: []int{1}}
	handler.broadcastEvent(state, dispatcher, logging.Nop(), ev)
	if len(dispatcher.sent) != 0 {
		t.Fatalf("Private event for a bot must not be broadcast")
	}

	handler.broadcastEvent(state, dispatcher, logging.Nop(), app.Event{Kind: app.EventBidPlaced, Payload: app.BidPlacedPayload{Seat: 1, Bid: 2}})
	if len(dispatcher.sent) != 1 || dispatcher.sent[0].recipients != nil {
		t.Fatalf("Public event must be broadcast to everyone")
	}
}

func TestQuickMatchQuery(t *testing.T) {
	want := "+label.game:landlord +label.open:>=1 +label.phase:lobby"
	if got := quickMatchQuery(); got != want {
		t.Fatalf("quickMatchQuery() = %q, want %q", got, want)
	}
}

func TestLocateRoomRPC(t *testing.T) {
	registry := app.NewRegistry("node-a", nil, logging.Nop())
	_, err := registry.Adopt(context.Background(), "match-7", func(roomID string) (*app.Table, error) {
		p := bot.NewRuleProvider(bot.DefaultAllyPolicy)
		return app.NewTable(domain.NewGame(roomID), app.NewService(nil, 0), []ports.DecisionProvider{p, p, p}, app.TableOptions{}, logging.Nop())
	})
	if err != nil {
		t.Fatalf("Adopt: %v", err)
	}
	rpc := rpcLocateRoom(registry)

	out, err := rpc(context.Background(), logging.Nop(), nil, nil, `{"room_id":"match-7"}`)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	var resp LocateRoomResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil || resp.Node != "node-a" || resp.RoomID != "match-7" {
		t.Fatalf("locate response %q, %v", out, err)
	}

	if _, err := rpc(context.Background(), logging.Nop(), nil, nil, `{"room_id":"missing"}`); err == nil {
		t.Fatalf("expected an unknown room to fail")
	}
	if _, err := rpc(context.Background(), logging.Nop(), nil, nil, `{}`); err == nil {
		t.Fatalf("expected a missing room id to fail")
	}
}
