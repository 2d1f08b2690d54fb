// Package script runs seat decisions written in Lua.
//
// A script defines two global functions:
//
//	function bid(hand, history) return 0 end        -- history: {{seat=, bid=}, ...}
//	function play(hand, ctx) return {} end          -- ctx: seat, last, last_seat, last_is_landlord, is_landlord, is_follow
//
// hand and last are arrays of card ids (1..54). An empty table passes. The
// global table "landlord" offers rank(id) and classify(ids) -> type, rank.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"landlord/internal/domain"
	"landlord/internal/ports"

	lua "github.com/yuin/gopher-lua"
)

// Provider is a DecisionProvider backed by one Lua state. Calls are serialized.
type Provider struct {
	mu sync.Mutex
	L  *lua.LState
}

var _ ports.DecisionProvider = (*Provider)(nil)

// Load compiles the script at path.
func Load(path string) (*Provider, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return New(string(src))
}

// New compiles src and checks that bid and play are defined.
func New(src string) (*Provider, error) {
	L := lua.NewState()
	registerHelpers(L)
	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	for _, name := range []string{"bid", "play"} {
		if L.GetGlobal(name).Type() != lua.LTFunction {
			L.Close()
			return nil, fmt.Errorf("script does not define %s()", name)
		}
	}
	return &Provider{L: L}, nil
}

// Close releases the Lua state.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.L.Close()
}

func (p *Provider) Bid(ctx context.Context, hand domain.Hand, history []domain.BidRecord) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	hist := p.L.NewTable()
	for _, rec := range history {
		row := p.L.NewTable()
		row.RawSetString("seat", lua.LNumber(rec.Seat))
		row.RawSetString("bid", lua.LNumber(rec.Bid))
		hist.Append(row)
	}
	ret, err := p.call(ctx, "bid", cardTable(p.L, hand.Cards()), hist)
	if err != nil {
		return 0, err
	}
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("bid() returned %s: %w", ret.Type(), domain.ErrProviderError)
	}
	return int(n), nil
}

func (p *Provider) Play(ctx context.Context, hand domain.Hand, pc ports.PlayContext) ([]domain.Card, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.L.NewTable()
	c.RawSetString("seat", lua.LNumber(pc.Seat))
	c.RawSetString("last", cardTable(p.L, pc.LastPlayed))
	c.RawSetString("last_seat", lua.LNumber(pc.LastPlayerSeat))
	c.RawSetString("last_is_landlord", lua.LBool(pc.LastPlayerIsLandlord))
	c.RawSetString("is_landlord", lua.LBool(pc.IsLandlord))
	c.RawSetString("is_follow", lua.LBool(pc.IsFollow))

	ret, err := p.call(ctx, "play", cardTable(p.L, hand.Cards()), c)
	if err != nil {
		return nil, err
	}
	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("play() returned %s: %w", ret.Type(), domain.ErrProviderError)
	}
	return tableCards(tbl)
}

func (p *Provider) call(ctx context.Context, name string, args ...lua.LValue) (lua.LValue, error) {
	p.L.SetContext(ctx)
	defer p.L.RemoveContext()

	err := p.L.CallByParam(lua.P{Fn: p.L.GetGlobal(name), NRet: 1, Protect: true}, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s(): %w", name, domain.ErrProviderTimeout)
			}
		}
		return nil, fmt.Errorf("%s(): %v: %w", name, err, domain.ErrProviderError)
	}
	ret := p.L.Get(-1)
	p.L.Pop(1)
	return ret, nil
}

func cardTable(L *lua.LState, cards []domain.Card) *lua.LTable {
	t := L.NewTable()
	for _, c := range cards {
		t.Append(lua.LNumber(c))
	}
	return t
}

func tableCards(t *lua.LTable) ([]domain.Card, error) {
	out := make([]domain.Card, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		n, ok := t.RawGetInt(i).(lua.LNumber)
		if !ok {
			return nil, fmt.Errorf("play() entry %d is not a card id: %w", i, domain.ErrProviderError)
		}
		out = append(out, domain.Card(int(n)))
	}
	return out, nil
}

func registerHelpers(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "rank", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(domain.Card(L.CheckInt(1)).Rank()))
		return 1
	}))
	L.SetField(mod, "classify", L.NewFunction(func(L *lua.LState) int {
		cards, err := tableCards(L.CheckTable(1))
		if err != nil {
			L.ArgError(1, "card ids expected")
			return 0
		}
		play := domain.Classify(cards)
		L.Push(lua.LString(play.Type.String()))
		L.Push(lua.LNumber(play.Rank))
		return 2
	}))
	L.SetGlobal("landlord", mod)
}
