package ifc

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/nicoarellano/components-na/errors"
)

// MemModel is an in-memory model: the JSON attribute-bag-per-entity
// representation produced by an upstream parser, keyed by express ID.
type MemModel struct {
	id       string
	path     string
	entities map[int]Bag
	byType   map[uint32][]int
}

// NewMemModel builds a model from already-decoded attribute bags.
func NewMemModel(id string, entities map[int]Bag) *MemModel {
	m := &MemModel{
		id:       id,
		entities: make(map[int]Bag, len(entities)),
		byType:   make(map[uint32][]int),
	}
	for entityID, bag := range entities {
		m.entities[entityID] = bag
		if code := bag.TypeCode(); code != 0 {
			m.byType[code] = append(m.byType[code], entityID)
		}
	}
	for code := range m.byType {
		sort.Ints(m.byType[code])
	}
	return m
}

// LoadModel decodes a model from its JSON representation: an object keyed by
// express ID, each value being that entity's attribute bag.
func LoadModel(id string, data []byte) (*MemModel, error) {
	var raw map[string]Bag
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding model document")
	}

	m := &MemModel{
		id:       id,
		entities: make(map[int]Bag, len(raw)),
		byType:   make(map[uint32][]int),
	}
	for key, bag := range raw {
		entityID, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrapf(err, "model document key %q is not an entity ID", key)
		}
		m.entities[entityID] = bag
		if code := bag.TypeCode(); code != 0 {
			m.byType[code] = append(m.byType[code], entityID)
		}
	}
	for code := range m.byType {
		sort.Ints(m.byType[code])
	}
	return m, nil
}

// LoadModelFile reads and decodes a model document from disk. The model
// remembers its backing path so watchers can tie file events back to it.
func LoadModelFile(id, path string) (*MemModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading model file %s", path)
	}
	m, err := LoadModel(id, data)
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// ID returns the model identifier.
func (m *MemModel) ID() string { return m.id }

// Path returns the backing file path, or "" for models built in memory.
func (m *MemModel) Path() string { return m.path }

// Get returns one entity's attribute bag, or nil when absent.
func (m *MemModel) Get(entityID int) Bag {
	return m.entities[entityID]
}

// Len returns the number of entities in the model.
func (m *MemModel) Len() int { return len(m.entities) }

// WalkType implements Model.
func (m *MemModel) WalkType(typeCode uint32, fn func(entityID int, bag Bag) error) error {
	for _, entityID := range m.byType[typeCode] {
		if err := fn(entityID, m.entities[entityID]); err != nil {
			return err
		}
	}
	return nil
}

// Registry owns a set of loaded models and exposes them through the
// PropertySource and DisposalNotifier interfaces the core consumes.
type Registry struct {
	mu        sync.RWMutex
	models    map[string]*MemModel
	nextSub   int
	onDispose map[int]func(modelID string)
}

// NewRegistry creates an empty model registry.
func NewRegistry() *Registry {
	return &Registry{
		models:    make(map[string]*MemModel),
		onDispose: make(map[int]func(string)),
	}
}

// Add registers a model. A model with the same ID is replaced.
func (r *Registry) Add(m *MemModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[m.ID()] = m
}

// Get returns a loaded model, or nil when unknown.
func (r *Registry) Get(modelID string) *MemModel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[modelID]
}

// Dispose drops a model and synchronously notifies disposal subscribers,
// so caches keyed by the model ID are gone before Dispose returns.
func (r *Registry) Dispose(modelID string) {
	r.mu.Lock()
	_, known := r.models[modelID]
	delete(r.models, modelID)
	fns := make([]func(string), 0, len(r.onDispose))
	for _, fn := range r.onDispose {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	if !known {
		return
	}
	for _, fn := range fns {
		fn(modelID)
	}
}

// OnDisposed implements DisposalNotifier.
func (r *Registry) OnDisposed(fn func(modelID string)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.onDispose[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.onDispose, id)
	}
}

// GetProperties implements PropertySource. A nil bag with nil error is the
// tombstone for an absent entity.
func (r *Registry) GetProperties(ctx context.Context, modelID string, entityID int) (Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := r.Get(modelID)
	if m == nil {
		return nil, errors.Newf("unknown model %q", modelID)
	}
	return m.Get(entityID), nil
}

// GetAllPropertiesOfType implements PropertySource.
func (r *Registry) GetAllPropertiesOfType(ctx context.Context, modelID string, typeCode uint32) (map[int]Bag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := r.Get(modelID)
	if m == nil {
		return nil, errors.Newf("unknown model %q", modelID)
	}
	out := make(map[int]Bag)
	_ = m.WalkType(typeCode, func(entityID int, bag Bag) error {
		out[entityID] = bag
		return nil
	})
	return out, nil
}

var (
	_ PropertySource   = (*Registry)(nil)
	_ DisposalNotifier = (*Registry)(nil)
	_ Model            = (*MemModel)(nil)
)
