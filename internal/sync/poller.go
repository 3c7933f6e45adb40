// Package sync runs the background refresh loops. The unread-count
// poll is process-wide periodic state whose lifecycle is strictly
// bound to the session: started on login or restore, stopped on
// logout, never left running unauthenticated.
package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
)

// fetchTimeout bounds a single poll round-trip.
const fetchTimeout = 10 * time.Second

// DefaultUnreadInterval is the unread-count poll cadence.
const DefaultUnreadInterval = 30 * time.Second

// UnreadCountMsg is a tea.Msg carrying a freshly polled unread count.
type UnreadCountMsg struct {
	Count int
	Err   error
}

// Poller polls the notification unread counter on a fixed interval
// while a session is active.
type Poller struct {
	notifications *cache.NotificationCache
	interval      time.Duration
	resultCh      chan UnreadCountMsg
	stopCh        chan struct{}
	triggerCh     chan struct{}
	mu            gosync.Mutex
	running       bool
}

// New creates a poller over the notification cache. A non-positive
// interval falls back to DefaultUnreadInterval.
func New(notifications *cache.NotificationCache, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultUnreadInterval
	}
	return &Poller{
		notifications: notifications,
		interval:      interval,
		resultCh:      make(chan UnreadCountMsg, 16),
		triggerCh:     make(chan struct{}, 16),
	}
}

// Start launches the polling goroutine and returns a subscription
// command that delivers UnreadCountMsg values to the Bubble Tea
// runtime. Starting an already-running poller is a no-op.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go p.loop(stopCh)

	return p.waitForResult()
}

// Stop halts the polling goroutine. The poller can be started again
// after a new login.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate poll outside the regular cadence.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next poll
// result. Call it after processing an UnreadCountMsg to keep
// listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

func (p *Poller) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial poll fires immediately on start.
	p.poll()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			p.poll()
		case <-p.triggerCh:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	count, err := p.notifications.RefreshUnreadCount(ctx)
	p.sendResult(UnreadCountMsg{Count: count, Err: err})
}

// sendResult sends on the result channel without blocking the poll
// loop; a full channel drops the update.
func (p *Poller) sendResult(msg UnreadCountMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
