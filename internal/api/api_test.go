package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/domain"
	"lifeos/pkg/inbox"
	"lifeos/pkg/planner"
	"lifeos/pkg/reference"
	"lifeos/pkg/task"
)

type fakeTriage struct {
	items     []inbox.Item
	notes     []reference.Note
	converted []int64
	discarded []int64
	lastKind  task.Kind
	lastEst   int
	err       error
}

func (f *fakeTriage) Capture(_ context.Context, text string) (*inbox.Item, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("text", "required")
	}
	it := inbox.Item{ID: int64(len(f.items) + 1), Text: text, CreatedAt: time.Now()}
	f.items = append(f.items, it)
	return &it, nil
}

func (f *fakeTriage) Inbox(context.Context) ([]inbox.Item, error) {
	return f.items, f.err
}

func (f *fakeTriage) ToTask(_ context.Context, id int64, kind task.Kind, est int) (*task.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.converted = append(f.converted, id)
	f.lastKind, f.lastEst = kind, est
	return &task.Task{ID: 1, Title: "t", Kind: kind, Status: task.StatusOpen, EstMinutes: est}, nil
}

func (f *fakeTriage) ToReference(_ context.Context, id int64) (*reference.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.converted = append(f.converted, id)
	return &reference.Note{ID: 1, Text: "n"}, nil
}

func (f *fakeTriage) Discard(_ context.Context, id int64) error {
	f.discarded = append(f.discarded, id)
	return nil
}

func (f *fakeTriage) References(context.Context) ([]reference.Note, error) {
	return f.notes, nil
}

type fakePlanner struct {
	lists    planner.Lists
	dates    []string
	done     []int64
	snoozed  []int64
	todayErr error
}

func (f *fakePlanner) Today(context.Context) (*planner.Lists, error) {
	if f.todayErr != nil {
		return nil, f.todayErr
	}
	l := f.lists
	return &l, nil
}

func (f *fakePlanner) ForDate(_ context.Context, raw string) (*planner.Lists, error) {
	f.dates = append(f.dates, raw)
	return &planner.Lists{Date: raw, Frogs: []task.Task{}, Tadpoles: []task.Task{}}, nil
}

func (f *fakePlanner) Complete(_ context.Context, id int64) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakePlanner) Snooze(_ context.Context, id int64) error {
	f.snoozed = append(f.snoozed, id)
	return nil
}

type fakeTasks struct {
	filter task.Filter
}

func (f *fakeTasks) List(_ context.Context, flt task.Filter) ([]task.Task, error) {
	f.filter = flt
	return []task.Task{}, nil
}

func (f *fakeTasks) Count(context.Context, task.Status) (int, error) { return 3, nil }

type fixedCount int

func (c fixedCount) Count(context.Context) (int, error) { return int(c), nil }

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testServer struct {
	srv     *Server
	triage  *fakeTriage
	planner *fakePlanner
	tasks   *fakeTasks
}

func newTestServer() *testServer {
	ts := &testServer{
		triage:  &fakeTriage{},
		planner: &fakePlanner{},
		tasks:   &fakeTasks{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.srv = New(log, Deps{
		Triage:     ts.triage,
		Planner:    ts.planner,
		Tasks:      ts.tasks,
		Inbox:      fixedCount(2),
		References: fixedCount(5),
		DB:         fakePinger{},
	})
	return ts
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func TestCaptureAndList(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/inbox", `{"text":"Call dentist"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var it inbox.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &it))
	assert.Equal(t, "Call dentist", it.Text)

	rec = ts.do(http.MethodGet, "/api/inbox", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []inbox.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 1)
}

func TestCaptureValidation(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/inbox", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = ts.do(http.MethodPost, "/api/inbox", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToTask(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/inbox/4/task", `{"kind":"frog","est_minutes":30}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []int64{4}, ts.triage.converted)
	assert.Equal(t, task.KindFrog, ts.triage.lastKind)
	assert.Equal(t, 30, ts.triage.lastEst)
}

func TestToTaskNotFound(t *testing.T) {
	ts := newTestServer()
	ts.triage.err = domain.ErrNotFound

	rec := ts.do(http.MethodPost, "/api/inbox/9/task", `{"kind":"tadpole"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBadID(t *testing.T) {
	ts := newTestServer()

	for _, path := range []string{"/api/inbox/abc/reference", "/api/inbox/0/reference"} {
		rec := ts.do(http.MethodPost, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Empty(t, ts.triage.converted)
}

func TestToReferenceAndDiscard(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodPost, "/api/inbox/2/reference", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(http.MethodDelete, "/api/inbox/3", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{3}, ts.triage.discarded)
}

func TestToday(t *testing.T) {
	ts := newTestServer()
	ts.planner.lists = planner.Lists{
		Date:     "2026-10-19",
		Frogs:    []task.Task{{ID: 1, Title: "Call dentist", Kind: task.KindFrog}},
		Tadpoles: []task.Task{},
	}

	rec := ts.do(http.MethodGet, "/api/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lists planner.Lists
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists.Frogs, 1)
	assert.Equal(t, "Call dentist", lists.Frogs[0].Title)

	rec = ts.do(http.MethodGet, "/api/today?date=garbage", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"garbage"}, ts.planner.dates)
}

func TestTodayInternalError(t *testing.T) {
	ts := newTestServer()
	ts.planner.todayErr = errors.New("connection reset")

	rec := ts.do(http.MethodGet, "/api/today", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestTaskActions(t *testing.T) {
	ts := newTestServer()

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, "/api/tasks/7/done", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPost, "/api/tasks/8/snooze", "").Code)
	assert.Equal(t, []int64{7}, ts.planner.done)
	assert.Equal(t, []int64{8}, ts.planner.snoozed)
}

func TestTaskList(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/tasks?status=done&kind=Frog&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, task.Filter{Status: task.StatusDone, Kind: task.KindFrog, Limit: 5}, ts.tasks.filter)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/tasks?kind=toad", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/tasks?status=later", "").Code)
}

func TestStatus(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, Status{Inbox: 2, OpenTasks: 3, References: 5}, st)
}

func TestHealth(t *testing.T) {
	ts := newTestServer()
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/health", "").Code)

	ts.srv.DB = fakePinger{err: errors.New("down")}
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(http.MethodGet, "/health", "").Code)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer()

	rec := ts.do(http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}
