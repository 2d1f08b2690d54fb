package nakama

import (
	"encoding/json"
	"fmt"
	"math"

	"landlord/internal/app"
	"landlord/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var eventOpCodes = map[app.EventKind]int64{
	app.EventHandDealt:      OpHandDealt,
	app.EventBidPlaced:      OpBidPlaced,
	app.EventRedeal:         OpRedeal,
	app.EventLandlordChosen: OpLandlordChosen,
	app.EventCardsPlayed:    OpCardsPlayed,
	app.EventTurnPassed:     OpTurnPassed,
	app.EventRoundOver:      OpRoundOver,
}

// toStruct converts a JSON-tagged payload into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

// encodePayload serializes an outgoing payload as a binary google.protobuf.Struct.
func encodePayload(v any) ([]byte, error) {
	st, err := toStruct(v)
	if err != nil {
		return nil, fmt.Errorf("convert payload: %w", err)
	}
	return proto.Marshal(st)
}

// decodeRequest parses a JSON client message. An empty message is an empty request.
func decodeRequest(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if len(data) == 0 {
		return st, nil
	}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}
	return st, nil
}

// cardsFromRequest reads {"cards": [id, ...]}.
func cardsFromRequest(st *structpb.Struct) ([]domain.Card, error) {
	v, ok := st.GetFields()["cards"]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("cards must be a list")
	}
	cards := make([]domain.Card, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, err := wholeNumber(item)
		if err != nil {
			return nil, err
		}
		c := domain.Card(n)
		if !c.Valid() {
			return nil, fmt.Errorf("card %d out of range", n)
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// bidFromRequest reads {"bid": n}.
func bidFromRequest(st *structpb.Struct) (int, error) {
	v, ok := st.GetFields()["bid"]
	if !ok {
		return 0, fmt.Errorf("missing bid")
	}
	return wholeNumber(v)
}

func wholeNumber(v *structpb.Value) (int, error) {
	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("expected a number")
	}
	f := num.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("expected a whole number, got %v", f)
	}
	return int(f), nil
}

// matchLabel renders the JSON label Nakama indexes for match listing.
func matchLabel(open int, phase string) (string, error) {
	st, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKey_Game:      GameLabel,
		MatchLabelKey_OpenSeats: open,
		MatchLabelKey_Phase:     phase,
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
