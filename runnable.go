package titanium

import "github.com/df-mc/dragonfly/server/world"

// Runnable is implemented by loops and tasks. Run is called inside a world
// transaction. tx is nil for tasks when the controller manages no worlds.
type Runnable interface {
	Run(tx *world.Tx)
}

// RunnableFunc adapts a function to Runnable.
type RunnableFunc func(tx *world.Tx)

func (f RunnableFunc) Run(tx *world.Tx) { f(tx) }
