// Package titanium is a server side library for Dragonfly servers, split into
// modules and features that players and operators can switch on and off.
//
// Titanium provides:
//   - Modules and features toggled from configuration
//   - Typed event subscriptions with filters and cancellation
//   - A tick scheduler for loops, tiles and delayed tasks
//   - Tiles with NBT persisted progress bars (see package progress)
//   - Cosmetic rewards kept per world and synced to clients (see package reward)
//
// # Quick Start
//
//	feature := titanium.NewFeature("no_sticks").
//	    Subscribe(titanium.On[titanium.EventItemPickup]().
//	        Filter(func(s *titanium.Session, e *titanium.EventItemPickup) bool {
//	            _, ok := e.Item.Item().(item.Stick)
//	            return ok
//	        }).
//	        Cancel())
//
//	ctrl := titanium.NewBuilder().
//	    Config(cfg).
//	    Module(titanium.NewModule("example").Feature(feature)).
//	    Module(titanium.RewardsModule(service, cfg)).
//	    Init(srv.World())
//
//	for p := range srv.Accept() {
//	    ctrl.Join(p)
//	}
//
// # Modules and Features
//
// A module groups features. A module is enabled when its configuration key
// ("example") is true, or by default when absent. A feature additionally
// checks "example.no_sticks". Forced modules and features ignore
// configuration. Features of a disabled module never run.
//
// # Events
//
// Dragonfly callbacks are re-posted as Titanium events. Subscriptions run in
// the order they were registered, on the goroutine that posted the event.
// Callbacks that come from a player handler run inside that player's world
// transaction.
//
// # Scheduling
//
// The scheduler ticks at a fixed rate (20 TPS by default). Each tick it runs
// loops by Stage inside every registered world's transaction, ticks the tiles
// of that world, then runs due tasks.
package titanium
