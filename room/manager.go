package room

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"drivesim/device"
	"drivesim/game"
	"drivesim/telemetry"
)

// SessionInfo is returned by the API for the session list.
type SessionInfo struct {
	ID      string `json:"id"`
	Variant string `json:"variant"`
	Driver  bool   `json:"driver"`
	Tick    int    `json:"tick"`
}

type ManagerOptions struct {
	Variants       map[string]game.Variant
	DefaultVariant string
	Policy         device.Policy
	TickHz         int
	Log            zerolog.Logger
	Metrics        *telemetry.Instruments
}

// Manager holds the live sessions by id. A session is created per driver
// connection and removed when the driver leaves.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	opts  ManagerOptions
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Variants == nil {
		opts.Variants = game.Variants()
	}
	return &Manager{
		rooms: make(map[string]*Room),
		opts:  opts,
	}
}

// Open creates and starts a session for the named variant. An empty name
// uses the default variant.
func (m *Manager) Open(variant string) (*Room, error) {
	if variant == "" {
		variant = m.opts.DefaultVariant
	}
	v, ok := m.opts.Variants[variant]
	if !ok {
		return nil, fmt.Errorf("unknown variant %q (have %v)", variant, game.VariantNames(m.opts.Variants))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	r := New(id, Options{
		Variant: v,
		Policy:  m.opts.Policy,
		TickHz:  m.opts.TickHz,
		Log:     m.opts.Log,
		Metrics: m.opts.Metrics,
	})
	r.OnEmpty = m.Remove
	m.rooms[id] = r
	go r.Run()
	return r, nil
}

func (m *Manager) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// Remove stops and forgets a session. Unknown ids are ignored.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		r.Stop()
		delete(m.rooms, id)
	}
}

// List returns all live sessions ordered by id.
func (m *Manager) List() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SessionInfo, 0, len(m.rooms))
	for id, r := range m.rooms {
		out = append(out, SessionInfo{
			ID:      id,
			Variant: r.Variant().Name,
			Driver:  r.HasDriver(),
			Tick:    r.Tick(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Close stops every session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Stop()
		delete(m.rooms, id)
	}
}
