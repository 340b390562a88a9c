package titanium

// Stage orders loops within a tick: Before, then Default, then After.
type Stage int

const (
	// Before runs first. Input handling and state other loops read.
	Before Stage = iota
	// Default runs the bulk of the game logic. Tiles tick at the end of it.
	Default
	// After runs last, for syncing and bookkeeping.
	After

	stageCount
)

func (s Stage) String() string {
	switch s {
	case Before:
		return "Before"
	case Default:
		return "Default"
	case After:
		return "After"
	default:
		return "Unknown"
	}
}
