package titanium

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleResolve(t *testing.T) {
	tests := []struct {
		name    string
		module  func() *Module
		toggles map[string]bool
		want    map[string]bool
	}{
		{
			name: "defaults",
			module: func() *Module {
				return NewModule("m").Feature(NewFeature("a"), NewFeature("b").Disabled())
			},
			want: map[string]bool{"m.a": true, "m.b": false},
		},
		{
			name: "configured",
			module: func() *Module {
				return NewModule("m").Feature(NewFeature("a"), NewFeature("b").Disabled())
			},
			toggles: map[string]bool{"m.a": false, "m.b": true},
			want:    map[string]bool{"m.a": false, "m.b": true},
		},
		{
			name: "disabled module disables forced features",
			module: func() *Module {
				return NewModule("m").Feature(NewFeature("a").Forced())
			},
			toggles: map[string]bool{"m": false},
			want:    map[string]bool{"m.a": false},
		},
		{
			name: "forced entries ignore configuration",
			module: func() *Module {
				return NewModule("m").Forced().Feature(NewFeature("a").Forced(), NewFeature("b"))
			},
			toggles: map[string]bool{"m": false, "m.a": false, "m.b": false},
			want:    map[string]bool{"m.a": true, "m.b": false},
		},
		{
			name: "disabled module enabled by configuration",
			module: func() *Module {
				return NewModule("m").Disabled().Feature(NewFeature("a"))
			},
			toggles: map[string]bool{"m": true},
			want:    map[string]bool{"m.a": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.module()
			m.resolve(tt.toggles)
			got := make(map[string]bool)
			for _, f := range m.Features() {
				got[f.Key()] = f.Enabled()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeatureKey(t *testing.T) {
	f := NewFeature("no_sticks")
	assert.Equal(t, "no_sticks", f.Key())
	NewModule("example").Feature(f)
	assert.Equal(t, "example.no_sticks", f.Key())
}
