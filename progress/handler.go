package progress

import (
	"sort"

	"github.com/oriumgames/titanium/nbthandler"
)

// Handler owns the named bars of a single tile.
type Handler struct {
	tile  Tile
	names []string
	bars  map[string]*Bar
}

// NewHandler returns a handler whose bars run on t.
func NewHandler(t Tile) *Handler {
	return &Handler{tile: t, bars: make(map[string]*Bar)}
}

// Add attaches b to the handler's tile under name, replacing any bar
// previously registered with that name.
func (h *Handler) Add(name string, b *Bar) *Bar {
	if _, ok := h.bars[name]; !ok {
		h.names = append(h.names, name)
	}
	h.bars[name] = b.WithTile(h.tile)
	return b
}

// Bar returns the bar registered under name.
func (h *Handler) Bar(name string) (*Bar, bool) {
	b, ok := h.bars[name]
	return b, ok
}

// Bars returns the bars in registration order.
func (h *Handler) Bars() []*Bar {
	out := make([]*Bar, 0, len(h.names))
	for _, n := range h.names {
		out = append(out, h.bars[n])
	}
	return out
}

// Update ticks every bar once, in registration order.
func (h *Handler) Update() {
	for _, n := range h.names {
		h.bars[n].Tick()
	}
}

// GuiAddons collects the addons of all bars.
func (h *Handler) GuiAddons() []AddonFactory {
	var out []AddonFactory
	for _, b := range h.Bars() {
		out = append(out, b.GuiAddons()...)
	}
	return out
}

// SerializeNBT stores each bar as a nested compound keyed by its name.
func (h *Handler) SerializeNBT() nbthandler.Compound {
	c := make(nbthandler.Compound, len(h.bars))
	for n, b := range h.bars {
		c[n] = b.SerializeNBT()
	}
	return c
}

// DeserializeNBT restores the bars already registered on the handler. Tags
// for unknown names are ignored.
func (h *Handler) DeserializeNBT(c nbthandler.Compound) {
	names := make([]string, 0, len(c))
	for n := range c {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		b, ok := h.bars[n]
		if !ok {
			continue
		}
		if sub, ok := c[n].(map[string]any); ok {
			b.DeserializeNBT(sub)
		}
	}
}
