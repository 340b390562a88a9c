package nbthandler

import (
	"reflect"
	"sync"
)

// Registry is an ordered list of handlers. The first handler accepting a type
// is used to read it; storing falls through to later handlers when an earlier
// one declines the value.
type Registry struct {
	mu       sync.RWMutex
	handlers []Handler
}

// NewRegistry returns a registry holding the default handlers.
func NewRegistry() *Registry {
	return &Registry{handlers: DefaultHandlers()}
}

// NewEmptyRegistry returns a registry without any handlers.
func NewEmptyRegistry() *Registry {
	return &Registry{}
}

// DefaultHandlers returns the built-in handlers in lookup order.
// SerializableHandler comes first so that types implementing Serializable are
// never caught by a kind-based handler.
func DefaultHandlers() []Handler {
	return []Handler{
		SerializableHandler{},
		BoolHandler{},
		IntHandler{},
		LongHandler{},
		DoubleHandler{},
		StringHandler{},
		UUIDHandler{},
		BlockPosHandler{},
		Vec3Handler{},
		StringListHandler{},
		CompoundHandler{},
	}
}

// Register appends h, giving it the lowest priority.
func (r *Registry) Register(h Handler) *Registry {
	r.mu.Lock()
	r.handlers = append(r.handlers, h)
	r.mu.Unlock()
	return r
}

// RegisterFirst prepends h, giving it the highest priority.
func (r *Registry) RegisterFirst(h Handler) *Registry {
	r.mu.Lock()
	r.handlers = append([]Handler{h}, r.handlers...)
	r.mu.Unlock()
	return r
}

// Handler returns the first handler valid for t.
func (r *Registry) Handler(t reflect.Type) (Handler, bool) {
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		if h.Valid(t) {
			return h, true
		}
	}
	return nil, false
}

// Store writes v under key using the first handler that accepts it. It
// returns false if no handler could store the value.
func (r *Registry) Store(c Compound, key string, v any) bool {
	if v == nil {
		return false
	}
	t := reflect.TypeOf(v)

	r.mu.RLock()
	handlers := r.handlers
	r.mu.RUnlock()

	for _, h := range handlers {
		if h.Valid(t) && h.Store(c, key, v) {
			return true
		}
	}
	return false
}

// Read returns the value stored under key converted to the type of current.
// It returns false when the key is absent or no handler accepts the type;
// the caller keeps current in that case.
func (r *Registry) Read(c Compound, key string, current any) (any, bool) {
	h, ok := r.Handler(reflect.TypeOf(current))
	if !ok {
		return nil, false
	}
	if _, present := c[key]; !present {
		return nil, false
	}
	return h.Read(c, key, current)
}
