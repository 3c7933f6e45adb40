// Package search implements the debounced task search. The timer is
// an owned, cancellable resource: each keystroke supersedes the
// pending invocation, and Stop tears everything down so no timer
// outlives its owner.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

// MinQueryLength is enforced client-side before any service call.
const MinQueryLength = 2

// DefaultDebounce is the quiet window after the last keystroke.
const DefaultDebounce = 300 * time.Millisecond

// TaskSearcher is the service-side search. Implemented by
// api.TaskClient.
type TaskSearcher interface {
	Search(ctx context.Context, query string) ([]model.Task, error)
}

// Result carries a resolved search back to the owner.
type Result struct {
	Query string
	Tasks []model.Task
	Err   error
}

// Debouncer coalesces rapid query edits into a single search using the
// final text. A query shorter than MinQueryLength (after trimming)
// cancels any pending search and clears shown results instead.
type Debouncer struct {
	mu      sync.Mutex
	svc     TaskSearcher
	delay   time.Duration
	timer   *time.Timer
	gen     int
	stopped bool

	// onResult receives resolved searches; onClear fires when a short
	// query voids the current results. Both may be called from the
	// timer goroutine.
	onResult func(Result)
	onClear  func()
}

// NewDebouncer creates a debouncer over the given searcher. A
// non-positive delay falls back to DefaultDebounce.
func NewDebouncer(svc TaskSearcher, delay time.Duration, onResult func(Result), onClear func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{
		svc:      svc,
		delay:    delay,
		onResult: onResult,
		onClear:  onClear,
	}
}

// Input registers a query edit. The previous pending timer is always
// cancelled first; if the trimmed query is long enough a new window
// starts, otherwise the results are cleared with no invocation.
func (d *Debouncer) Input(query string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen

	trimmed := strings.TrimSpace(query)
	if len(trimmed) < MinQueryLength {
		d.mu.Unlock()
		if d.onClear != nil {
			d.onClear()
		}
		return
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen, trimmed)
	})
	d.mu.Unlock()
}

// Stop cancels any pending search and disables the debouncer. Safe to
// call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// fire runs the search unless a later Input superseded this window.
func (d *Debouncer) fire(gen int, query string) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	tasks, err := d.svc.Search(context.Background(), query)
	if d.onResult != nil {
		d.onResult(Result{Query: query, Tasks: tasks, Err: err})
	}
}
