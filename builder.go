package titanium

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"

	"github.com/oriumgames/titanium/nbthandler"
)

// Builder configures a Controller before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	modules  []*Module
	subs     []Subscriber
	handlers []nbthandler.Handler
	cfg      Config
	log      *slog.Logger
}

// NewBuilder creates a builder with the default configuration.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig(), log: slog.Default()}
}

// Module adds modules.
func (b *Builder) Module(ms ...*Module) *Builder {
	b.modules = append(b.modules, ms...)
	return b
}

// Subscribe adds subscriptions that do not belong to a feature.
func (b *Builder) Subscribe(subs ...Subscriber) *Builder {
	b.subs = append(b.subs, subs...)
	return b
}

// NBTHandler registers a field handler for tiles, tried before the default
// handlers. Handlers added earlier are tried first.
func (b *Builder) NBTHandler(h nbthandler.Handler) *Builder {
	b.handlers = append(b.handlers, h)
	return b
}

// Config sets the configuration. Module toggles and the tick rate are read
// from it.
func (b *Builder) Config(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// Logger sets the logger. slog.Default is used otherwise.
func (b *Builder) Logger(l *slog.Logger) *Builder {
	if l != nil {
		b.log = l
	}
	return b
}

// Init resolves which modules and features run, registers their commands,
// subscriptions and loops, starts the scheduler over ws and runs the setup
// hooks of enabled features.
func (b *Builder) Init(ws ...*world.World) *Controller {
	c := newController(b.cfg, b.log, ws)
	for i := len(b.handlers) - 1; i >= 0; i-- {
		c.registry.RegisterFirst(b.handlers[i])
	}
	c.Subscribe(b.subs...)

	var hooks []func(*Controller)
	for _, m := range b.modules {
		c.modules = append(c.modules, m)
		on := m.resolve(b.cfg.Modules)
		c.log.Debug("titanium: module resolved", "module", m.name, "enabled", on)

		for _, f := range m.features {
			for _, sub := range f.subs {
				c.events.add(sub, f)
			}
			if !f.enabled {
				continue
			}
			for _, command := range f.commands {
				cmd.Register(command)
			}
			for _, l := range f.loops {
				c.scheduler.addLoop(l.system, f.Key(), l.interval, l.stage)
			}
			hooks = append(hooks, f.setup...)
		}
	}

	c.Start()

	for _, hook := range hooks {
		hook(c)
	}
	return c
}
