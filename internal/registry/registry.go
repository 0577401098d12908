// Package registry holds the games in play.
//
// The registry is owned by the composition root and passed to whoever needs
// it. Every mutation of a game goes through With, which holds that game's
// lock for the duration of the callback, so two requests against the same
// game never interleave. Different games proceed independently.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/cubefour/internal/game"
)

// ErrNotFound is returned for an unknown game id.
var ErrNotFound = errors.New("game not found")

type entry struct {
	mu   sync.Mutex
	game *game.Game
}

// Registry maps game ids to games.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*entry
	ids   IDGenerator
}

// New returns an empty registry. A nil generator means UUIDv7Generator.
func New(ids IDGenerator) *Registry {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Registry{
		games: make(map[string]*entry),
		ids:   ids,
	}
}

// Create starts a new game and returns its id and initial snapshot.
// Panics if the generator repeats an id.
func (r *Registry) Create() (string, game.Snapshot) {
	id := r.ids.Generate()
	g := game.New()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.games[id]; dup {
		panic(fmt.Sprintf("registry: duplicate game id %q", id))
	}
	r.games[id] = &entry{game: g}
	return id, g.Snapshot()
}

// Get returns a snapshot of the game.
func (r *Registry) Get(id string) (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.With(id, func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	})
	return snap, err
}

// With runs fn with exclusive access to the game. fn's error is returned
// unchanged.
func (r *Registry) With(id string, fn func(*game.Game) error) error {
	r.mu.RLock()
	e, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}

// Delete removes the game. A caller already inside With keeps its game until
// the callback returns.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(r.games, id)
	return nil
}

// Len returns the number of games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// IDs returns the game ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
