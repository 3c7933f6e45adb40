package board

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/satveer15/workflow-mgmt-tool/internal/authz"
	"github.com/satveer15/workflow-mgmt-tool/internal/cache"
	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

type fakeTaskService struct {
	mu        sync.Mutex
	setStatus []model.TaskStatus

	listFn      func() ([]model.Task, error)
	setStatusFn func(id int64, status model.TaskStatus) (model.Task, error)
}

func (f *fakeTaskService) List(context.Context, model.TaskFilters) ([]model.Task, error) {
	return f.listFn()
}

func (f *fakeTaskService) Get(context.Context, int64) (model.Task, error) {
	return model.Task{}, errors.New("not implemented")
}

func (f *fakeTaskService) Create(context.Context, model.CreateTaskRequest) (model.Task, error) {
	return model.Task{}, errors.New("not implemented")
}

func (f *fakeTaskService) Update(context.Context, int64, model.UpdateTaskRequest) (model.Task, error) {
	return model.Task{}, errors.New("not implemented")
}

func (f *fakeTaskService) Delete(context.Context, int64) error {
	return errors.New("not implemented")
}

func (f *fakeTaskService) Assign(context.Context, int64, int64) (model.Task, error) {
	return model.Task{}, errors.New("not implemented")
}

func (f *fakeTaskService) SetStatus(_ context.Context, id int64, status model.TaskStatus) (model.Task, error) {
	f.mu.Lock()
	f.setStatus = append(f.setStatus, status)
	f.mu.Unlock()
	return f.setStatusFn(id, status)
}

func (f *fakeTaskService) setStatusCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.setStatus)
}

type stubSession struct {
	user *model.User
}

func (s stubSession) Current() *model.User { return s.user }

func boardFixture(t *testing.T, user *model.User, tasks []model.Task) (*Controller, *fakeTaskService, *cache.TaskCache) {
	t.Helper()
	svc := &fakeTaskService{}
	svc.listFn = func() ([]model.Task, error) { return tasks, nil }

	checker := authz.NewChecker(stubSession{user: user})
	c := cache.NewTaskCache(svc, checker)
	if _, err := c.Load(context.Background(), model.TaskFilters{}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return NewController(c, checker), svc, c
}

func adminUser() *model.User {
	return &model.User{ID: 1, Username: "admin", Roles: []string{model.RoleAdmin}}
}

func boardTask(id int64, status model.TaskStatus) model.Task {
	return model.Task{ID: id, Title: "card", Status: status, Priority: model.PriorityMedium, CreatedByID: 5}
}

func TestBeginDragCacheMiss(t *testing.T) {
	b, _, _ := boardFixture(t, adminUser(), nil)

	if b.BeginDrag(42) {
		t.Error("expected BeginDrag to fail for an unknown id")
	}
	if b.State() != Idle {
		t.Error("gesture should stay IDLE after a failed pick-up")
	}
}

func TestBeginDragAndCancel(t *testing.T) {
	b, _, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	if !b.BeginDrag(1) {
		t.Fatal("BeginDrag(1) failed")
	}
	if b.State() != Dragging {
		t.Error("expected DRAGGING state")
	}
	if active := b.Active(); active == nil || active.ID != 1 {
		t.Errorf("Active() = %+v, want task 1", active)
	}

	b.Cancel()
	if b.State() != Idle || b.Active() != nil {
		t.Error("Cancel should return the gesture to IDLE with no active task")
	}
}

func TestDropWithoutDrag(t *testing.T) {
	b, svc, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	outcome, err := b.Drop(context.Background(), model.StatusDone)
	if outcome != OutcomeCancelled || err != nil {
		t.Errorf("Drop() = (%v, %v), want (OutcomeCancelled, nil)", outcome, err)
	}
	if svc.setStatusCalls() != 0 {
		t.Error("no request should be made without an active drag")
	}
}

func TestDropSameLane(t *testing.T) {
	b, svc, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	b.BeginDrag(1)
	outcome, err := b.Drop(context.Background(), model.StatusTodo)
	if outcome != OutcomeCancelled || err != nil {
		t.Errorf("Drop() = (%v, %v), want (OutcomeCancelled, nil)", outcome, err)
	}
	if svc.setStatusCalls() != 0 {
		t.Error("a same-lane drop must not issue a request")
	}
	if b.State() != Idle {
		t.Error("gesture should resolve to IDLE")
	}
}

func TestDropUnknownLane(t *testing.T) {
	b, svc, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	b.BeginDrag(1)
	outcome, _ := b.Drop(context.Background(), model.TaskStatus("ARCHIVED"))
	if outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want OutcomeCancelled", outcome)
	}
	if svc.setStatusCalls() != 0 {
		t.Error("an unknown lane must not issue a request")
	}
}

// An unauthorized drop never leaves the client: the card snaps back
// and the projection still shows the original lane.
func TestDropDenied(t *testing.T) {
	assignee := int64(7)
	tracked := boardTask(1, model.StatusTodo)
	tracked.AssignedToID = &assignee

	bystander := &model.User{ID: 3, Username: "bystander", Roles: []string{model.RoleEmployee}}
	b, svc, c := boardFixture(t, bystander, []model.Task{tracked})

	b.BeginDrag(1)
	outcome, err := b.Drop(context.Background(), model.StatusDone)
	if outcome != OutcomeDenied {
		t.Errorf("outcome = %v, want OutcomeDenied", outcome)
	}
	if !errors.Is(err, cache.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
	if svc.setStatusCalls() != 0 {
		t.Error("a denied drop must not issue a request")
	}

	if got, _ := c.Lookup(1); got.Status != model.StatusTodo {
		t.Errorf("status = %q, want TODO", got.Status)
	}
	lanes := b.Lanes()
	if len(lanes[model.StatusTodo]) != 1 || len(lanes[model.StatusDone]) != 0 {
		t.Error("the card should still project into the TODO lane")
	}
}

func TestDropApplied(t *testing.T) {
	b, svc, c := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	done := boardTask(1, model.StatusDone)
	svc.setStatusFn = func(int64, model.TaskStatus) (model.Task, error) {
		return done, nil
	}
	svc.listFn = func() ([]model.Task, error) {
		return []model.Task{done}, nil
	}

	b.BeginDrag(1)
	outcome, err := b.Drop(context.Background(), model.StatusDone)
	if outcome != OutcomeApplied || err != nil {
		t.Fatalf("Drop() = (%v, %v), want (OutcomeApplied, nil)", outcome, err)
	}

	if got, _ := c.Lookup(1); got.Status != model.StatusDone {
		t.Errorf("status = %q, want DONE", got.Status)
	}
	lanes := b.Lanes()
	if len(lanes[model.StatusDone]) != 1 || len(lanes[model.StatusTodo]) != 0 {
		t.Error("the card should project into the DONE lane")
	}
}

// A service rejection rolls the optimistic placement back: the cache
// is unchanged and the override is cleared.
func TestDropRejectedSnapsBack(t *testing.T) {
	b, svc, c := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	svc.setStatusFn = func(int64, model.TaskStatus) (model.Task, error) {
		return model.Task{}, errors.New("conflict")
	}

	b.BeginDrag(1)
	outcome, err := b.Drop(context.Background(), model.StatusDone)
	if outcome != OutcomeRejected {
		t.Errorf("outcome = %v, want OutcomeRejected", outcome)
	}
	if err == nil {
		t.Error("expected the rejection error to surface")
	}

	if got, _ := c.Lookup(1); got.Status != model.StatusTodo {
		t.Errorf("status = %q after rejection, want TODO", got.Status)
	}
	lanes := b.Lanes()
	if len(lanes[model.StatusTodo]) != 1 || len(lanes[model.StatusDone]) != 0 {
		t.Error("the card should snap back into the TODO lane")
	}
}

func TestDropTriggersReload(t *testing.T) {
	b, svc, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	listCalls := 0
	done := boardTask(1, model.StatusDone)
	svc.listFn = func() ([]model.Task, error) {
		listCalls++
		return []model.Task{done}, nil
	}
	svc.setStatusFn = func(int64, model.TaskStatus) (model.Task, error) {
		return done, nil
	}

	b.BeginDrag(1)
	if _, err := b.Drop(context.Background(), model.StatusDone); err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	if listCalls != 1 {
		t.Errorf("reload List calls = %d, want 1", listCalls)
	}
}

// While the request is in flight the override projects the card into
// the target lane even though the cache still holds the old status.
func TestLanesShowOptimisticPlacement(t *testing.T) {
	b, svc, _ := boardFixture(t, adminUser(), []model.Task{boardTask(1, model.StatusTodo)})

	inFlight := make(chan struct{})
	release := make(chan struct{})
	done := boardTask(1, model.StatusDone)
	svc.setStatusFn = func(int64, model.TaskStatus) (model.Task, error) {
		close(inFlight)
		<-release
		return done, nil
	}
	svc.listFn = func() ([]model.Task, error) {
		return []model.Task{done}, nil
	}

	b.BeginDrag(1)
	resolved := make(chan struct{})
	go func() {
		defer close(resolved)
		_, _ = b.Drop(context.Background(), model.StatusDone)
	}()

	<-inFlight
	lanes := b.Lanes()
	if len(lanes[model.StatusDone]) != 1 || len(lanes[model.StatusTodo]) != 0 {
		t.Error("in-flight drop should project into the target lane")
	}

	close(release)
	<-resolved
}
