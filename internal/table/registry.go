package table

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/liarsbar/internal/game"
	"github.com/lox/liarsbar/internal/randutil"
)

var (
	ErrTableExists   = errors.New("a game is already open at this table")
	ErrTableNotFound = errors.New("no game at this table")
)

// Registry owns every table in the process, keyed by table id.
type Registry struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	opts    Options
	logger  *log.Logger
	created int // per-table seed stream when opts.Seed is fixed
}

// NewRegistry creates an empty registry. opts is the template every new
// table is created from; Creator is filled per table.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Registry{
		tables: make(map[string]*Table),
		opts:   opts,
		logger: logger.WithPrefix("registry"),
	}
}

// NewID returns a fresh table id.
func NewID() string {
	return uuid.NewString()[:8]
}

// Create opens a table. An ended game at the same id is replaced; a live
// one is not.
func (r *Registry) Create(id, creator string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.tables[id]; ok {
		if old.Phase() != game.Ended {
			return nil, ErrTableExists
		}
		old.Close()
		r.logger.Debug("Replacing ended table", "table", id)
	}

	opts := r.opts
	opts.Creator = creator
	if r.opts.Seed != 0 {
		opts.Seed = randutil.Derive(r.opts.Seed, r.created)
	}
	r.created++

	t, err := New(id, opts)
	if err != nil {
		return nil, fmt.Errorf("create table %s: %w", id, err)
	}
	r.tables[id] = t
	return t, nil
}

// Get returns the table with id.
func (r *Registry) Get(id string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return t, nil
}

// End force-ends the game at id. The table stays registered so its result
// can still be read.
func (r *Registry) End(id, reason string) (*game.GameEndOutcome, error) {
	t, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	out, err := t.ForceEnd(reason)
	if err != nil {
		return nil, err
	}
	t.Close()
	return out, nil
}

// Delete removes the table at id, stopping its bots.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[id]
	if !ok {
		return false
	}
	t.Close()
	delete(r.tables, id)
	return true
}

// List summarises every table, sorted by id.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops bot work at every table.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tables {
		t.Close()
	}
}
