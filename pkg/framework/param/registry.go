package param

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicateID  = errors.New("param: duplicate parameter id")
	ErrDuplicateKey = errors.New("param: duplicate parameter key")
)

// Registry holds the synth parameters in registration order. Lookups take
// a read lock, so the audio path resolves handles once and reads through
// them instead of calling Get per block.
type Registry struct {
	params map[uint32]*Parameter
	byKey  map[string]*Parameter
	order  []uint32
	mu     sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		byKey:  make(map[string]*Parameter),
	}
}

// Add registers parameters. It fails on the first id or key collision and
// leaves earlier parameters of the call registered.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("%w: %d (%s)", ErrDuplicateID, p.ID, p.Name)
		}
		if p.Key != "" {
			if _, exists := r.byKey[p.Key]; exists {
				return fmt.Errorf("%w: %s", ErrDuplicateKey, p.Key)
			}
			r.byKey[p.Key] = p
		}
		r.params[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	return nil
}

func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.params[id]
}

func (r *Registry) GetByKey(key string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[key]
}

func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}
	return r.params[r.order[index]]
}

func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int32(len(r.order))
}

// All returns all parameters in registration order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}
	return result
}

func (r *Registry) ResetToDefaults() {
	for _, p := range r.All() {
		p.ResetToDefault()
	}
}
