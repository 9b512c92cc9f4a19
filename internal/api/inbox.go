package api

import (
	"net/http"

	"lifeos/pkg/task"
)

type captureRequest struct {
	Text string `json:"text"`
}

type toTaskRequest struct {
	Kind       task.Kind `json:"kind"`
	EstMinutes int       `json:"est_minutes"`
}

func (s *Server) handleInboxList(w http.ResponseWriter, r *http.Request) {
	items, err := s.Triage.Inbox(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	it, err := s.Triage.Capture(r.Context(), req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("inbox", "created", it.ID)
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.Triage.Discard(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("inbox", "deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	var req toTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	t, err := s.Triage.ToTask(r.Context(), id, req.Kind, req.EstMinutes)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("inbox", "converted", id)
	s.publish("task", "created", t.ID)
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleToReference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	n, err := s.Triage.ToReference(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.publish("inbox", "converted", id)
	s.publish("reference", "created", n.ID)
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleReferenceList(w http.ResponseWriter, r *http.Request) {
	notes, err := s.Triage.References(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}
