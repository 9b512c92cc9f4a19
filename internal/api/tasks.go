package api

import (
	"net/http"

	"lifeos/internal/domain"
	"lifeos/pkg/planner"
	"lifeos/pkg/task"
)

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	var (
		lists *planner.Lists
		err   error
	)
	if r.URL.Query().Has("date") {
		lists, err = s.Planner.ForDate(r.Context(), r.URL.Query().Get("date"))
	} else {
		lists, err = s.Planner.Today(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		Status: task.Status(q.Get("status")),
		Limit:  queryInt(r, "limit", 50),
	}
	if k := q.Get("kind"); k != "" {
		kind, err := task.ParseKind(k)
		if err != nil {
			s.writeServiceError(w, r, domain.NewValidationError("kind", "must be frog or tadpole"))
			return
		}
		f.Kind = kind
	}
	switch f.Status {
	case "", task.StatusOpen, task.StatusDone:
	default:
		s.writeServiceError(w, r, domain.NewValidationError("status", "must be open or done"))
		return
	}

	tasks, err := s.Tasks.List(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskDone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.Planner.Complete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("task", "done", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskSnooze(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.Planner.Snooze(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("task", "snoozed", id)
	w.WriteHeader(http.StatusNoContent)
}
