package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"landlord/internal/ports"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Registry tracks live tables by room id. It is the only structure shared
// between table goroutines.
type Registry struct {
	tables sync.Map
	count  atomic.Int64
	dir    ports.RoomDirectory
	node   string
	logger runtime.Logger
}

// NewRegistry returns a registry for this node. dir may be nil when rooms
// are not shared across nodes.
func NewRegistry(node string, dir ports.RoomDirectory, logger runtime.Logger) *Registry {
	return &Registry{dir: dir, node: node, logger: logger}
}

// Create allocates a room id, builds its table and registers it.
func (r *Registry) Create(ctx context.Context, build func(roomID string) (*Table, error)) (*Table, error) {
	return r.Adopt(ctx, uuid.NewString(), build)
}

// Adopt builds and registers a table under an id chosen by the caller, such
// as a Nakama match id. It replaces any table already held under roomID.
func (r *Registry) Adopt(ctx context.Context, roomID string, build func(roomID string) (*Table, error)) (*Table, error) {
	t, err := build(roomID)
	if err != nil {
		return nil, fmt.Errorf("build table %s: %w", roomID, err)
	}
	if _, loaded := r.tables.Swap(roomID, t); !loaded {
		r.count.Add(1)
	}
	if r.dir != nil {
		if err := r.dir.Register(ctx, roomID, r.node); err != nil {
			r.logger.Warn("Registry: failed to register room %s: %v", roomID, err)
		}
		// Every applied event keeps the directory entry alive.
		sink := t.opts.Sink
		t.opts.Sink = func(ev Event) {
			r.Refresh(ctx, roomID)
			if sink != nil {
				sink(ev)
			}
		}
	}
	return t, nil
}

// Refresh extends the directory entry of a local room, registering it again
// if it already expired.
func (r *Registry) Refresh(ctx context.Context, roomID string) {
	if r.dir == nil {
		return
	}
	if _, ok := r.tables.Load(roomID); !ok {
		return
	}
	err := r.dir.Refresh(ctx, roomID)
	if errors.Is(err, ErrRoomNotFound) {
		err = r.dir.Register(ctx, roomID, r.node)
	}
	if err != nil {
		r.logger.Warn("Registry: failed to refresh room %s: %v", roomID, err)
	}
}

// Get returns the local table for roomID.
func (r *Registry) Get(roomID string) (*Table, error) {
	v, ok := r.tables.Load(roomID)
	if !ok {
		return nil, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	return v.(*Table), nil
}

// Locate returns the node hosting roomID: this node for local rooms,
// otherwise whatever the directory knows.
func (r *Registry) Locate(ctx context.Context, roomID string) (string, error) {
	if _, ok := r.tables.Load(roomID); ok {
		return r.node, nil
	}
	if r.dir == nil {
		return "", fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	}
	return r.dir.Lookup(ctx, roomID)
}

// Remove drops a finished room.
func (r *Registry) Remove(ctx context.Context, roomID string) {
	if _, loaded := r.tables.LoadAndDelete(roomID); !loaded {
		return
	}
	r.count.Add(-1)
	if r.dir != nil {
		if err := r.dir.Unregister(ctx, roomID); err != nil {
			r.logger.Warn("Registry: failed to unregister room %s: %v", roomID, err)
		}
	}
}

// Len returns the number of live rooms.
func (r *Registry) Len() int {
	return int(r.count.Load())
}
