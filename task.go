package titanium

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// scheduledTask represents a task scheduled for future execution.
type scheduledTask struct {
	executeAt time.Time
	task      Runnable
	name      string

	// interval is zero for one-shot tasks.
	interval time.Duration
	// remaining counts the runs left for repeating tasks, -1 for no limit.
	remaining int

	cancelled atomic.Bool

	// index is the heap index for efficient removal
	index int
}

// taskQueue is a priority queue for scheduled tasks.
// It uses a binary heap for O(log n) insertion and removal.
type taskQueue struct {
	mu    sync.Mutex
	heap  []*scheduledTask
	notif chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		heap:  make([]*scheduledTask, 0, 64),
		notif: make(chan struct{}, 1),
	}
}

// compactHeap removes cancelled tasks from the heap and rebuilds the heap property.
func (q *taskQueue) compactHeap() {
	write := 0
	for read := 0; read < len(q.heap); read++ {
		if !q.heap[read].cancelled.Load() {
			q.heap[write] = q.heap[read]
			q.heap[write].index = write
			write++
		}
	}
	for i := write; i < len(q.heap); i++ {
		q.heap[i] = nil
	}
	q.heap = q.heap[:write]

	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.down(i, len(q.heap))
	}
}

// Push adds a task and wakes the scheduler.
func (q *taskQueue) Push(task *scheduledTask) {
	q.mu.Lock()
	if len(q.heap) > 100 && len(q.heap)%100 == 0 {
		q.compactHeap()
	}
	q.push(task)
	q.mu.Unlock()

	select {
	case q.notif <- struct{}{}:
	default:
	}
}

// push adds a task without locking. Caller must hold lock.
func (q *taskQueue) push(task *scheduledTask) {
	task.index = len(q.heap)
	q.heap = append(q.heap, task)
	q.up(task.index)
}

// PopDue removes and returns all tasks that are due (executeAt <= now).
func (q *taskQueue) PopDue(now time.Time) []*scheduledTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*scheduledTask
	cancelledCount := 0
	for len(q.heap) > 0 && !q.heap[0].executeAt.After(now) {
		task := q.pop()
		if task.cancelled.Load() {
			cancelledCount++
			continue
		}
		due = append(due, task)
	}
	if cancelledCount > 50 && len(q.heap) > 0 {
		q.compactHeap()
	}
	return due
}

// reschedule pushes a repeating task back after it ran.
func (q *taskQueue) reschedule(t *scheduledTask, now time.Time) {
	if t.interval <= 0 || t.cancelled.Load() {
		return
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining == 0 {
		return
	}
	t.executeAt = t.executeAt.Add(t.interval)
	if t.executeAt.Before(now) {
		t.executeAt = now.Add(t.interval)
	}
	q.Push(t)
}

// Len returns the number of queued tasks, cancelled ones included.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Notify returns the notification channel.
func (q *taskQueue) Notify() <-chan struct{} {
	return q.notif
}

// pop removes and returns the minimum task. Caller must hold lock.
func (q *taskQueue) pop() *scheduledTask {
	n := len(q.heap) - 1
	q.swap(0, n)
	q.down(0, n)
	task := q.heap[n]
	q.heap[n] = nil
	q.heap = q.heap[:n]
	task.index = -1
	return task
}

func (q *taskQueue) up(i int) {
	for {
		parent := (i - 1) / 2
		if parent == i || !q.heap[i].executeAt.Before(q.heap[parent].executeAt) {
			break
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *taskQueue) down(i, n int) {
	for {
		left := 2*i + 1
		if left >= n || left < 0 {
			break
		}
		j := left
		if right := left + 1; right < n && q.heap[right].executeAt.Before(q.heap[left].executeAt) {
			j = right
		}
		if !q.heap[j].executeAt.Before(q.heap[i].executeAt) {
			break
		}
		q.swap(i, j)
		i = j
	}
}

func (q *taskQueue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.heap[i].index = i
	q.heap[j].index = j
}

// TaskHandle allows cancelling a scheduled task.
type TaskHandle struct {
	task *scheduledTask
}

// Cancel cancels the task. A repeating task does not run again.
func (h *TaskHandle) Cancel() {
	if h != nil && h.task != nil {
		h.task.cancelled.Store(true)
	}
}

// Cancelled reports whether Cancel was called.
func (h *TaskHandle) Cancelled() bool {
	return h != nil && h.task != nil && h.task.cancelled.Load()
}

// Schedule runs task once after delay, in the transaction of the
// controller's first world.
func Schedule(c *Controller, task Runnable, delay time.Duration) *TaskHandle {
	return ScheduleAt(c, task, time.Now().Add(delay))
}

// ScheduleAt runs task once at the given time. A time in the past runs it
// on the next tick.
func ScheduleAt(c *Controller, task Runnable, at time.Time) *TaskHandle {
	if c == nil || task == nil {
		return nil
	}
	t := &scheduledTask{executeAt: at, task: task, name: taskName(task)}
	c.taskQueue.Push(t)
	return &TaskHandle{task: t}
}

// Dispatch runs task as soon as possible.
func Dispatch(c *Controller, task Runnable) *TaskHandle {
	return Schedule(c, task, 0)
}

// ScheduleRepeating runs task every interval. If times is -1, the task
// repeats until cancelled; otherwise it runs exactly times times.
func ScheduleRepeating(c *Controller, task Runnable, interval time.Duration, times int) *TaskHandle {
	if c == nil || task == nil || interval <= 0 || times == 0 {
		return nil
	}
	t := &scheduledTask{
		executeAt: time.Now().Add(interval),
		task:      task,
		name:      taskName(task),
		interval:  interval,
		remaining: times,
	}
	c.taskQueue.Push(t)
	return &TaskHandle{task: t}
}

func taskName(task Runnable) string {
	return fmt.Sprintf("%T", task)
}
