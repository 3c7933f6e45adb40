package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/satveer15/workflow-mgmt-tool/internal/model"
)

func noToken() string { return "" }

func newTestClient(t *testing.T, handler http.HandlerFunc, token TokenProvider) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, token), srv
}

func writeEnvelope(w http.ResponseWriter, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": success,
		"message": message,
		"data":    json.RawMessage(raw),
	})
}

func TestClientDecodesEnvelopeData(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/1" {
			t.Errorf("path = %q, want /tasks/1", r.URL.Path)
		}
		writeEnvelope(w, true, "", model.Task{ID: 1, Title: "decoded"})
	}, noToken)

	var out model.Task
	if err := c.Get(context.Background(), "/tasks/1", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.ID != 1 || out.Title != "decoded" {
		t.Errorf("decoded task = %+v", out)
	}
}

func TestClientEnvelopeFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, false, "task not visible to user", nil)
	}, noToken)

	var out model.Task
	err := c.Get(context.Background(), "/tasks/1", &out)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "task not visible to user" {
		t.Errorf("Message = %q, want the service message verbatim", apiErr.Message)
	}
}

func TestClientHTTPErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeEnvelope(w, false, "no such task", nil)
	}, noToken)

	err := c.Get(context.Background(), "/tasks/99", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "no such task" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "no such task")
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(w, true, "", nil)
	}, func() string { return "tok-123" })

	if err := c.Get(context.Background(), "/users/me", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestClientOmitsAuthWhenLoggedOut(t *testing.T) {
	var gotAuth string
	var gotRequestID string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeEnvelope(w, true, "", nil)
	}, noToken)

	if err := c.Get(context.Background(), "/auth/login", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-ID header on every request")
	}
}

func TestClientRetriesRateLimit(t *testing.T) {
	attempts := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeEnvelope(w, true, "", []model.Task{{ID: 1}})
	}, noToken)

	var out []model.Task
	if err := c.Get(context.Background(), "/tasks", &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if len(out) != 1 {
		t.Errorf("tasks = %+v, want one", out)
	}
}

func TestClientRateLimitRespectsContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}, noToken)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.Get(ctx, "/tasks", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want context deadline", err)
	}
}

func TestClientPostMarshalsBody(t *testing.T) {
	var gotBody model.CreateTaskRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		writeEnvelope(w, true, "", model.Task{ID: 10, Title: gotBody.Title})
	}, noToken)

	var out model.Task
	req := model.CreateTaskRequest{Title: "write handover notes", Priority: model.PriorityHigh}
	if err := c.Post(context.Background(), "/tasks", req, &out); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if gotBody.Title != "write handover notes" || gotBody.Priority != model.PriorityHigh {
		t.Errorf("server saw body %+v", gotBody)
	}
	if out.ID != 10 {
		t.Errorf("out.ID = %d, want 10", out.ID)
	}
}

func TestClientNoContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, noToken)

	if err := c.Delete(context.Background(), "/tasks/1"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestTaskClientListFilters(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeEnvelope(w, true, "", []model.Task{})
	}, noToken)

	status := model.StatusTodo
	assignee := int64(7)
	tc := NewTaskClient(c)
	if _, err := tc.List(context.Background(), model.TaskFilters{Status: &status, AssignedToID: &assignee}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if gotQuery != "assignedToId=7&status=TODO" {
		t.Errorf("query = %q, want assignedToId=7&status=TODO", gotQuery)
	}
}

func TestTaskClientSetStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/5/status" {
			t.Errorf("%s %s, want PATCH /tasks/5/status", r.Method, r.URL.Path)
		}
		var req model.UpdateTaskStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if req.Status != model.StatusDone {
			t.Errorf("status = %q, want DONE", req.Status)
		}
		writeEnvelope(w, true, "", model.Task{ID: 5, Status: model.StatusDone})
	}, noToken)

	tc := NewTaskClient(c)
	got, err := tc.SetStatus(context.Background(), 5, model.StatusDone)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if got.Status != model.StatusDone {
		t.Errorf("got.Status = %q, want DONE", got.Status)
	}
}

func TestTaskClientSearchEncodesQuery(t *testing.T) {
	var gotQuery string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		writeEnvelope(w, true, "", []model.Task{{ID: 1}})
	}, noToken)

	tc := NewTaskClient(c)
	got, err := tc.Search(context.Background(), "release notes & more")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "release notes & more" {
		t.Errorf("query = %q, want the raw text round-tripped", gotQuery)
	}
	if len(got) != 1 {
		t.Errorf("got %d tasks, want 1", len(got))
	}
}
