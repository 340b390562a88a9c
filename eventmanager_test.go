package titanium

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	Value     int
	cancelled bool
}

func (e *testEvent) Cancel() { e.cancelled = true }

type plainEvent struct{ Value int }

func newTestController() *Controller {
	return newController(DefaultConfig(), slog.Default(), nil)
}

func TestSubscriptionFilterProcessCancel(t *testing.T) {
	c := newTestController()
	var seen []int
	c.Subscribe(On[testEvent]().
		Filter(func(_ *Session, e *testEvent) bool { return e.Value > 1 }).
		Process(func(_ *Session, e *testEvent) { seen = append(seen, e.Value) }).
		Cancel())

	low := &testEvent{Value: 1}
	high := &testEvent{Value: 2}
	c.Post(nil, low)
	c.Post(nil, high)

	assert.Equal(t, []int{2}, seen)
	assert.False(t, low.cancelled)
	assert.True(t, high.cancelled)
}

func TestSubscriptionCancelIgnoresNonCancellable(t *testing.T) {
	c := newTestController()
	calls := 0
	c.Subscribe(On[plainEvent]().Process(func(*Session, *plainEvent) { calls++ }).Cancel())
	c.Post(nil, &plainEvent{})
	assert.Equal(t, 1, calls)
}

func TestPostRoutesByType(t *testing.T) {
	c := newTestController()
	var order []string
	c.Subscribe(
		On[testEvent]().Process(func(*Session, *testEvent) { order = append(order, "first") }),
		On[plainEvent]().Process(func(*Session, *plainEvent) { order = append(order, "plain") }),
		On[testEvent]().Process(func(*Session, *testEvent) { order = append(order, "second") }),
	)

	c.Post(nil, &testEvent{})
	assert.Equal(t, []string{"first", "second"}, order)

	// Values instead of pointers are not delivered.
	c.Post(nil, testEvent{})
	c.Post(nil, nil)
	assert.Len(t, order, 2)
}

func TestPostSkipsDisabledFeatures(t *testing.T) {
	c := newTestController()
	on, off := 0, 0
	m := NewModule("m").Feature(
		NewFeature("on").Subscribe(On[plainEvent]().Process(func(*Session, *plainEvent) { on++ })),
		NewFeature("off").Disabled().Subscribe(On[plainEvent]().Process(func(*Session, *plainEvent) { off++ })),
	)
	m.resolve(nil)
	for _, f := range m.Features() {
		for _, sub := range f.subs {
			c.events.add(sub, f)
		}
	}

	c.Post(nil, &plainEvent{})
	assert.Equal(t, 1, on)
	assert.Equal(t, 0, off)
}

func TestProcessReceivesSession(t *testing.T) {
	c := newTestController()
	s := c.newSession(nil, uuid.New(), "Steve", "")
	c.addSession(s)

	var got *Session
	c.Subscribe(On[plainEvent]().Process(func(s *Session, _ *plainEvent) { got = s }))
	s.Post(&plainEvent{})
	require.NotNil(t, got)
	assert.Equal(t, "Steve", got.Name())

	got = nil
	s.close()
	s.Post(&plainEvent{})
	assert.Nil(t, got)
}
