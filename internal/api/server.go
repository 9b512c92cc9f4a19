// Package api serves the JSON HTTP API and the static web build.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"lifeos/internal/domain"
	"lifeos/pkg/inbox"
	"lifeos/pkg/notify"
	"lifeos/pkg/planner"
	"lifeos/pkg/reference"
	"lifeos/pkg/task"
)

// Triage is the inbox side of the API.
type Triage interface {
	Capture(ctx context.Context, text string) (*inbox.Item, error)
	Inbox(ctx context.Context) ([]inbox.Item, error)
	ToTask(ctx context.Context, itemID int64, kind task.Kind, estMinutes int) (*task.Task, error)
	ToReference(ctx context.Context, itemID int64) (*reference.Note, error)
	Discard(ctx context.Context, itemID int64) error
	References(ctx context.Context) ([]reference.Note, error)
}

// Planner is the daily-list side of the API.
type Planner interface {
	Today(ctx context.Context) (*planner.Lists, error)
	ForDate(ctx context.Context, raw string) (*planner.Lists, error)
	Complete(ctx context.Context, id int64) error
	Snooze(ctx context.Context, id int64) error
}

// TaskReader lists and counts tasks.
type TaskReader interface {
	List(ctx context.Context, f task.Filter) ([]task.Task, error)
	Count(ctx context.Context, status task.Status) (int, error)
}

// Counter reports the size of a collection.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the Server dispatches to.
type Deps struct {
	Triage     Triage
	Planner    Planner
	Tasks      TaskReader
	Inbox      Counter
	References Counter
	DB         Pinger
	// Changes, when set, receives a notification after every mutation and
	// backs GET /api/stream.
	Changes    *notify.Bus
	WasmDir    string
}

// Server is the HTTP API server.
type Server struct {
	Deps
	log     *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// New creates a new Server.
func New(log *slog.Logger, deps Deps) *Server {
	s := &Server{
		Deps: deps,
		log:  log,
		mux:  http.NewServeMux(),
	}
	s.routes()
	s.handler = Chain(RequestID, Recovery(log), Logger(log))(s.mux)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Inbox
	s.mux.HandleFunc("GET /api/inbox", s.handleInboxList)
	s.mux.HandleFunc("POST /api/inbox", s.handleCapture)
	s.mux.HandleFunc("DELETE /api/inbox/{id}", s.handleDiscard)
	s.mux.HandleFunc("POST /api/inbox/{id}/task", s.handleToTask)
	s.mux.HandleFunc("POST /api/inbox/{id}/reference", s.handleToReference)

	// Tasks
	s.mux.HandleFunc("GET /api/today", s.handleToday)
	s.mux.HandleFunc("GET /api/tasks", s.handleTaskList)
	s.mux.HandleFunc("POST /api/tasks/{id}/done", s.handleTaskDone)
	s.mux.HandleFunc("POST /api/tasks/{id}/snooze", s.handleTaskSnooze)

	// Reference
	s.mux.HandleFunc("GET /api/references", s.handleReferenceList)

	// System
	if s.Changes != nil {
		s.mux.HandleFunc("GET /api/stream", s.handleStream)
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Static files (Gio WASM UI)
	if s.WasmDir != "" {
		s.mux.Handle("GET /", http.FileServer(http.Dir(s.WasmDir)))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto status codes. Unexpected
// errors are logged and reported without detail.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) publish(entity, action string, id int64) {
	if s.Changes != nil {
		s.Changes.Publish(notify.Change{Entity: entity, Action: action, ID: id})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
