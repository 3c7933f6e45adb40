package sync

import (
	"context"
	gosync "sync"
	"testing"
	"time"

	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

type countingNotificationService struct {
	mu    gosync.Mutex
	count int
	calls int
}

func (s *countingNotificationService) List(context.Context) ([]model.Notification, error) {
	return nil, nil
}

func (s *countingNotificationService) UnreadCount(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.count, nil
}

func (s *countingNotificationService) MarkRead(_ context.Context, id int64) (model.Notification, error) {
	return model.Notification{ID: id, IsRead: true}, nil
}

func (s *countingNotificationService) MarkAllRead(context.Context) error {
	return nil
}

func (s *countingNotificationService) unreadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingNotificationService) setCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = n
}

func waitForMsg(t *testing.T, p *Poller) UnreadCountMsg {
	t.Helper()
	done := make(chan UnreadCountMsg, 1)
	go func() {
		msg := p.WaitForNextResult()()
		if m, ok := msg.(UnreadCountMsg); ok {
			done <- m
		}
	}()
	select {
	case m := <-done:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a poll result")
		return UnreadCountMsg{}
	}
}

func TestPollerInitialPoll(t *testing.T) {
	svc := &countingNotificationService{count: 3}
	notifs := cache.NewNotificationCache(svc)
	p := New(notifs, time.Hour)
	defer p.Stop()

	cmd := p.Start()
	if cmd == nil {
		t.Fatal("Start() returned a nil subscription command")
	}

	msg, ok := cmd().(UnreadCountMsg)
	if !ok {
		t.Fatalf("subscription returned %T, want UnreadCountMsg", msg)
	}
	if msg.Count != 3 || msg.Err != nil {
		t.Errorf("msg = %+v, want count 3", msg)
	}
	if notifs.UnreadCount() != 3 {
		t.Errorf("cache unread = %d, want 3", notifs.UnreadCount())
	}
}

func TestPollerPeriodicPolls(t *testing.T) {
	svc := &countingNotificationService{count: 1}
	p := New(cache.NewNotificationCache(svc), 20*time.Millisecond)
	defer p.Stop()

	p.Start()
	deadline := time.Now().Add(2 * time.Second)
	for svc.unreadCalls() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := svc.unreadCalls(); got < 3 {
		t.Errorf("unread calls = %d, want at least 3", got)
	}
}

func TestPollerRefreshTriggersImmediatePoll(t *testing.T) {
	svc := &countingNotificationService{count: 1}
	notifs := cache.NewNotificationCache(svc)
	p := New(notifs, time.Hour)
	defer p.Stop()

	cmd := p.Start()
	_ = cmd() // initial poll

	svc.setCount(5)
	p.Refresh()

	msg := waitForMsg(t, p)
	if msg.Count != 5 {
		t.Errorf("msg.Count = %d, want 5", msg.Count)
	}
}

func TestPollerStopHaltsPolling(t *testing.T) {
	svc := &countingNotificationService{}
	p := New(cache.NewNotificationCache(svc), 20*time.Millisecond)

	p.Start()
	for svc.unreadCalls() == 0 {
		time.Sleep(time.Millisecond)
	}
	p.Stop()

	settled := svc.unreadCalls()
	time.Sleep(100 * time.Millisecond)
	// One poll may have been in flight when Stop landed.
	if got := svc.unreadCalls(); got > settled+1 {
		t.Errorf("unread calls grew from %d to %d after Stop", settled, got)
	}
}

func TestPollerRestarts(t *testing.T) {
	svc := &countingNotificationService{count: 2}
	p := New(cache.NewNotificationCache(svc), time.Hour)

	p.Start()
	p.Stop()

	cmd := p.Start()
	defer p.Stop()
	if cmd == nil {
		t.Fatal("restart returned a nil subscription command")
	}
	msg := waitForMsg(t, p)
	if msg.Count != 2 {
		t.Errorf("msg.Count = %d, want 2", msg.Count)
	}
}

func TestPollerDoubleStartIsNoOp(t *testing.T) {
	svc := &countingNotificationService{}
	p := New(cache.NewNotificationCache(svc), time.Hour)
	defer p.Stop()

	if cmd := p.Start(); cmd == nil {
		t.Fatal("first Start() returned nil")
	}
	if cmd := p.Start(); cmd != nil {
		t.Error("second Start() should be a no-op returning nil")
	}
}
