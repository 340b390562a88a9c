package titanium

import (
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
)

// Module groups related features. Whether a module runs is decided once, at
// Builder.Init, from configuration.
type Module struct {
	name        string
	description string
	disabled    bool
	forced      bool
	features    []*Feature
}

// NewModule creates a module enabled by default.
func NewModule(name string) *Module {
	return &Module{name: name}
}

// Name returns the module name, which is also its configuration key.
func (m *Module) Name() string { return m.name }

// Description returns the description set with Describe.
func (m *Module) Description() string { return m.description }

// Features returns the features of the module.
func (m *Module) Features() []*Feature { return m.features }

// Describe sets a human readable description.
func (m *Module) Describe(d string) *Module {
	m.description = d
	return m
}

// Disabled makes the module disabled unless configuration enables it.
func (m *Module) Disabled() *Module {
	m.disabled = true
	return m
}

// Forced makes the module ignore configuration and always run.
func (m *Module) Forced() *Module {
	m.forced = true
	return m
}

// Feature adds features to the module.
func (m *Module) Feature(fs ...*Feature) *Module {
	for _, f := range fs {
		f.module = m
		m.features = append(m.features, f)
	}
	return m
}

// Feature is a unit of behaviour within a module: a set of event
// subscriptions, commands and loops that are switched on and off together.
type Feature struct {
	name        string
	description string
	disabled    bool
	forced      bool
	module      *Module

	subs     []Subscriber
	commands []cmd.Command
	loops    []loopRegistration
	setup    []func(*Controller)

	enabled bool
}

type loopRegistration struct {
	system   Runnable
	interval time.Duration
	stage    Stage
}

// NewFeature creates a feature enabled by default.
func NewFeature(name string) *Feature {
	return &Feature{name: name}
}

// Name returns the feature name.
func (f *Feature) Name() string { return f.name }

// Description returns the description set with Describe.
func (f *Feature) Description() string { return f.description }

// Key returns the configuration key of the feature, "module.feature".
func (f *Feature) Key() string {
	if f.module == nil {
		return f.name
	}
	return f.module.name + "." + f.name
}

// Describe sets a human readable description.
func (f *Feature) Describe(d string) *Feature {
	f.description = d
	return f
}

// Disabled makes the feature disabled unless configuration enables it.
func (f *Feature) Disabled() *Feature {
	f.disabled = true
	return f
}

// Forced makes the feature ignore its own configuration key. It still does
// not run when its module is disabled.
func (f *Feature) Forced() *Feature {
	f.forced = true
	return f
}

// Subscribe adds event subscriptions that only run while the feature is
// enabled.
func (f *Feature) Subscribe(subs ...Subscriber) *Feature {
	f.subs = append(f.subs, subs...)
	return f
}

// Command adds a Dragonfly command, registered at Init if the feature is
// enabled.
func (f *Feature) Command(c cmd.Command) *Feature {
	f.commands = append(f.commands, c)
	return f
}

// Loop adds a system run every interval in the given stage of each world.
// An interval of 0 runs the loop every tick.
func (f *Feature) Loop(sys Runnable, interval time.Duration, stage Stage) *Feature {
	f.loops = append(f.loops, loopRegistration{system: sys, interval: interval, stage: stage})
	return f
}

// Setup adds a hook run once at Init, after the scheduler started, if the
// feature is enabled.
func (f *Feature) Setup(hook func(*Controller)) *Feature {
	f.setup = append(f.setup, hook)
	return f
}

// Enabled reports whether the feature was enabled at Init.
func (f *Feature) Enabled() bool { return f.enabled }

// resolve decides whether m and its features run under toggles.
func (m *Module) resolve(toggles map[string]bool) bool {
	on := toggle(toggles, m.name, m.forced, m.disabled)
	for _, f := range m.features {
		f.enabled = on && toggle(toggles, f.Key(), f.forced, f.disabled)
	}
	return on
}

func toggle(toggles map[string]bool, key string, forced, disabled bool) bool {
	if forced {
		return true
	}
	if v, ok := toggles[key]; ok {
		return v
	}
	return !disabled
}
