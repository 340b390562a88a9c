package titanium

import (
	"reflect"
	"sync"
)

// Cancellable is implemented by events that can be cancelled, usually by
// cancelling the underlying player.Context.
type Cancellable interface {
	Cancel()
}

// Subscriber is a subscription built with On. It is registered with
// Feature.Subscribe or Controller.Subscribe.
type Subscriber interface {
	eventType() reflect.Type
	handle(s *Session, event any)
}

// Subscription handles events of type E. Build one with On and chain
// Filter, Process and Cancel:
//
//	titanium.On[titanium.EventChat]().
//	    Filter(func(s *titanium.Session, e *titanium.EventChat) bool { return strings.Contains(*e.Message, "badword") }).
//	    Cancel()
type Subscription[E any] struct {
	filters []func(*Session, *E) bool
	process []func(*Session, *E)
	cancel  bool
}

// On starts a subscription for events of type E. Events are posted as *E.
func On[E any]() *Subscription[E] {
	return &Subscription[E]{}
}

// Filter adds a predicate. The subscription only runs when every predicate
// returns true.
func (sub *Subscription[E]) Filter(fn func(s *Session, e *E) bool) *Subscription[E] {
	sub.filters = append(sub.filters, fn)
	return sub
}

// Process adds a function run for every matching event.
func (sub *Subscription[E]) Process(fn func(s *Session, e *E)) *Subscription[E] {
	sub.process = append(sub.process, fn)
	return sub
}

// Cancel cancels matching events after the process functions ran. It has no
// effect on events that are not Cancellable.
func (sub *Subscription[E]) Cancel() *Subscription[E] {
	sub.cancel = true
	return sub
}

func (sub *Subscription[E]) eventType() reflect.Type {
	return reflect.TypeFor[E]()
}

func (sub *Subscription[E]) handle(s *Session, event any) {
	e, ok := event.(*E)
	if !ok {
		return
	}
	for _, f := range sub.filters {
		if !f(s, e) {
			return
		}
	}
	for _, p := range sub.process {
		p(s, e)
	}
	if sub.cancel {
		if c, ok := event.(Cancellable); ok {
			c.Cancel()
		}
	}
}

// eventManager routes posted events to subscriptions by event type.
type eventManager struct {
	mu   sync.RWMutex
	subs map[reflect.Type][]registeredSub
}

type registeredSub struct {
	sub     Subscriber
	feature *Feature
}

func newEventManager() *eventManager {
	return &eventManager{subs: make(map[reflect.Type][]registeredSub)}
}

func (m *eventManager) add(sub Subscriber, f *Feature) {
	t := sub.eventType()
	m.mu.Lock()
	m.subs[t] = append(m.subs[t], registeredSub{sub: sub, feature: f})
	m.mu.Unlock()
}

// post runs every subscription registered for the type of event, which must
// be a pointer. Subscriptions owned by disabled features are skipped.
func (m *eventManager) post(s *Session, event any, enabled func(*Feature) bool) {
	t := reflect.TypeOf(event)
	if t == nil || t.Kind() != reflect.Pointer {
		return
	}
	m.mu.RLock()
	subs := m.subs[t.Elem()]
	m.mu.RUnlock()

	for _, reg := range subs {
		if reg.feature != nil && !enabled(reg.feature) {
			continue
		}
		reg.sub.handle(s, event)
	}
}
