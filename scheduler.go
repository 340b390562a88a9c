package titanium

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/world"
)

// Ticker is implemented by tiles. Tick is called once per scheduler tick
// inside the transaction of the world the tile was added to.
type Ticker interface {
	Tick(tx *world.Tx)
}

// Scheduler runs loops, tiles and tasks at a fixed tick rate. Worlds are
// processed in parallel; everything within one world runs in a single
// transaction per tick.
type Scheduler struct {
	controller *Controller

	loops   [stageCount][]*loopState
	loopsMu sync.RWMutex

	tiles   map[*world.World][]Ticker
	tilesMu sync.RWMutex

	workers    int
	workerPool chan func()
	workerWG   sync.WaitGroup

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	tickRate   time.Duration
	tickNumber atomic.Uint64
}

// loopState tracks the state of a single loop system.
type loopState struct {
	system   Runnable
	name     string
	interval time.Duration
	nextRun  time.Time
}

// ShouldRun checks if the loop should run at the given time.
func (l *loopState) ShouldRun(now time.Time) bool {
	if l.interval == 0 {
		return true
	}
	return !now.Before(l.nextRun)
}

// MarkRun schedules the next run.
func (l *loopState) MarkRun(now time.Time) {
	if l.interval > 0 {
		// Drift-free timing
		l.nextRun = l.nextRun.Add(l.interval)
		if l.nextRun.Before(now) {
			// Catch up if we're behind
			l.nextRun = now.Add(l.interval)
		}
	}
}

func newScheduler(c *Controller, tickRate time.Duration) *Scheduler {
	if tickRate <= 0 {
		tickRate = 50 * time.Millisecond // 20 TPS
	}
	workers := max(runtime.GOMAXPROCS(0), 1)
	return &Scheduler{
		controller: c,
		tiles:      make(map[*world.World][]Ticker),
		workers:    workers,
		workerPool: make(chan func(), workers*4),
		tickRate:   tickRate,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// TickNumber returns the number of ticks run so far.
func (s *Scheduler) TickNumber() uint64 { return s.tickNumber.Load() }

// Start begins the scheduler's tick loop.
func (s *Scheduler) Start() {
	if s.running.Swap(true) {
		return
	}
	for i := 0; i < s.workers; i++ {
		s.workerWG.Add(1)
		go s.worker()
	}
	go s.tickLoop()
}

// Stop stops the tick loop and waits for running work to finish.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return
	}
	close(s.stopCh)
	<-s.doneCh

	close(s.workerPool)
	s.workerWG.Wait()
}

func (s *Scheduler) worker() {
	defer s.workerWG.Done()
	for fn := range s.workerPool {
		fn()
	}
}

func (s *Scheduler) tickLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.tick(now)
		case <-s.controller.taskQueue.Notify():
			s.processTasks(time.Now())
		}
	}
}

// tick executes one scheduler tick.
func (s *Scheduler) tick(now time.Time) {
	s.tickNumber.Add(1)

	var due [stageCount][]*loopState
	s.loopsMu.RLock()
	for stage := Before; stage < stageCount; stage++ {
		for _, l := range s.loops[stage] {
			if l.ShouldRun(now) {
				due[stage] = append(due[stage], l)
			}
		}
	}
	s.loopsMu.RUnlock()

	var wg sync.WaitGroup
	for _, w := range s.controller.worlds {
		if w == nil {
			continue
		}
		wg.Add(1)
		job := func() {
			defer wg.Done()
			s.exec(w, func(tx *world.Tx) { s.runWorld(tx, w, due) })
		}
		select {
		case s.workerPool <- job:
		default:
			// Worker pool full, run inline
			job()
		}
	}
	wg.Wait()

	s.loopsMu.Lock()
	for stage := range due {
		for _, l := range due[stage] {
			l.MarkRun(now)
		}
	}
	s.loopsMu.Unlock()

	s.processTasks(now)
}

// exec runs fn in a transaction of w and waits for it to finish.
func (s *Scheduler) exec(w *world.World, fn func(tx *world.Tx)) {
	done := make(chan struct{})
	w.Exec(func(tx *world.Tx) {
		defer close(done)
		fn(tx)
	})
	<-done
}

func (s *Scheduler) runWorld(tx *world.Tx, w *world.World, due [stageCount][]*loopState) {
	for stage := Before; stage < stageCount; stage++ {
		for _, l := range due[stage] {
			s.safeRun("loop", l.name, func() { l.system.Run(tx) })
		}
		if stage == Default {
			s.tickTiles(tx, w)
		}
	}
}

func (s *Scheduler) tickTiles(tx *world.Tx, w *world.World) {
	s.tilesMu.RLock()
	tiles := s.tiles[w]
	s.tilesMu.RUnlock()

	for _, t := range tiles {
		s.safeRun("tile", "", func() { t.Tick(tx) })
	}
}

// safeRun runs fn, logging instead of crashing the tick loop on panic.
func (s *Scheduler) safeRun(kind, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.controller.log.Error("titanium: panic in "+kind,
				"name", name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// addLoop registers a loop with the scheduler.
func (s *Scheduler) addLoop(sys Runnable, name string, interval time.Duration, stage Stage) {
	if stage < Before || stage >= stageCount {
		stage = Default
	}
	s.loopsMu.Lock()
	s.loops[stage] = append(s.loops[stage], &loopState{
		system:   sys,
		name:     name,
		interval: interval,
		nextRun:  time.Now(),
	})
	s.loopsMu.Unlock()
}

func (s *Scheduler) addTile(w *world.World, t Ticker) {
	s.tilesMu.Lock()
	s.tiles[w] = append(s.tiles[w], t)
	s.tilesMu.Unlock()
}

func (s *Scheduler) removeTile(w *world.World, t Ticker) bool {
	s.tilesMu.Lock()
	defer s.tilesMu.Unlock()

	tiles := s.tiles[w]
	for i, existing := range tiles {
		if existing == t {
			// Copy so a tick iterating the old slice is unaffected.
			next := make([]Ticker, 0, len(tiles)-1)
			next = append(next, tiles[:i]...)
			s.tiles[w] = append(next, tiles[i+1:]...)
			return true
		}
	}
	return false
}

// processTasks runs every due task in the first world's transaction, or
// without one when the controller has no worlds.
func (s *Scheduler) processTasks(now time.Time) {
	tasks := s.controller.taskQueue.PopDue(now)
	if len(tasks) == 0 {
		return
	}

	run := func(tx *world.Tx) {
		for _, t := range tasks {
			if t.cancelled.Load() {
				continue
			}
			s.safeRun("task", t.name, func() { t.task.Run(tx) })
			s.controller.taskQueue.reschedule(t, now)
		}
	}

	if w := s.defaultWorld(); w != nil {
		s.exec(w, run)
		return
	}
	run(nil)
}

func (s *Scheduler) defaultWorld() *world.World {
	for _, w := range s.controller.worlds {
		if w != nil {
			return w
		}
	}
	return nil
}

// AddTile registers t to be ticked in w every tick.
func (c *Controller) AddTile(w *world.World, t Ticker) {
	c.scheduler.addTile(w, t)
}

// RemoveTile stops ticking t. It reports whether t was registered in w.
func (c *Controller) RemoveTile(w *world.World, t Ticker) bool {
	return c.scheduler.removeTile(w, t)
}
