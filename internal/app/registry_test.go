package app

import (
	"context"
	"sync"
	"testing"

	"landlord/internal/domain"
	"landlord/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDirectory struct {
	mu        sync.Mutex
	rooms     map[string]string
	refreshes int
}

func (d *memDirectory) Register(_ context.Context, roomID, node string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[roomID] = node
	return nil
}

func (d *memDirectory) Lookup(_ context.Context, roomID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	node, ok := d.rooms[roomID]
	if !ok {
		return "", ErrRoomNotFound
	}
	return node, nil
}

func (d *memDirectory) Refresh(_ context.Context, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	d.refreshes++
	return nil
}

func (d *memDirectory) Unregister(_ context.Context, roomID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, roomID)
	return nil
}

func TestRegistryLifecycle(t *testing.T) {
	dir := &memDirectory{rooms: map[string]string{"remote-room": "node-b"}}
	reg := NewRegistry("node-a", dir, logging.Nop())
	ctx := context.Background()

	build := func(roomID string) (*Table, error) {
		return NewTable(domain.NewGame(roomID), NewService(nil, 0), ruleSeats(), TableOptions{}, logging.Nop())
	}
	table, err := reg.Create(ctx, build)
	require.NoError(t, err)
	id := table.Game.ID
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get(id)
	require.NoError(t, err)
	assert.Same(t, table, got)

	node, err := reg.Locate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "node-a", node)
	node, err = reg.Locate(ctx, "remote-room")
	require.NoError(t, err)
	assert.Equal(t, "node-b", node)

	reg.Remove(ctx, id)
	reg.Remove(ctx, id)
	assert.Equal(t, 0, reg.Len())
	_, err = reg.Get(id)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = dir.Lookup(ctx, id)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryRefreshesRoomsWhilePlaying(t *testing.T) {
	dir := &memDirectory{rooms: map[string]string{}}
	reg := NewRegistry("node-a", dir, logging.Nop())
	ctx := context.Background()

	events := 0
	table, err := reg.Create(ctx, func(roomID string) (*Table, error) {
		opts := TableOptions{Sink: func(Event) { events++ }}
		return NewTable(domain.NewGame(roomID), NewService(nil, 0), ruleSeats(), opts, logging.Nop())
	})
	require.NoError(t, err)
	id := table.Game.ID

	require.NoError(t, table.Deal(ctx))
	assert.Equal(t, domain.Seats, events, "the table's own sink still sees every event")
	assert.Equal(t, events, dir.refreshes)

	dir.mu.Lock()
	delete(dir.rooms, id)
	dir.mu.Unlock()
	_, err = table.Run(ctx)
	require.NoError(t, err)

	node, err := dir.Lookup(ctx, id)
	require.NoError(t, err, "an expired entry is registered again")
	assert.Equal(t, "node-a", node)
	assert.Greater(t, dir.refreshes, domain.Seats)
}

func TestRegistryAdoptKeepsCallerID(t *testing.T) {
	dir := &memDirectory{rooms: map[string]string{}}
	reg := NewRegistry("node-a", dir, logging.Nop())
	ctx := context.Background()
	build := func(roomID string) (*Table, error) {
		return NewTable(domain.NewGame(roomID), NewService(nil, 0), ruleSeats(), TableOptions{}, logging.Nop())
	}

	first, err := reg.Adopt(ctx, "match-1", build)
	require.NoError(t, err)
	assert.Equal(t, "match-1", first.Game.ID)
	second, err := reg.Adopt(ctx, "match-1", build)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len(), "a new round replaces the room's table")

	got, err := reg.Get("match-1")
	require.NoError(t, err)
	assert.Same(t, second, got)
	node, err := dir.Lookup(ctx, "match-1")
	require.NoError(t, err)
	assert.Equal(t, "node-a", node)
}

func TestRegistryConcurrentCreate(t *testing.T) {
	reg := NewRegistry("local", nil, logging.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Create(context.Background(), func(roomID string) (*Table, error) {
				return NewTable(domain.NewGame(roomID), NewService(nil, 0), ruleSeats(), TableOptions{}, logging.Nop())
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, reg.Len())

	_, err := reg.Locate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
