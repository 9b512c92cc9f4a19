package api

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"lifeos/pkg/task"
)

// Status is the body of GET /api/status.
type Status struct {
	Inbox      int `json:"inbox"`
	OpenTasks  int `json:"open_tasks"`
	References int `json:"references"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.DB.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var st Status
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		st.Inbox, err = s.Inbox.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.OpenTasks, err = s.Tasks.Count(ctx, task.StatusOpen)
		return err
	})
	g.Go(func() (err error) {
		st.References, err = s.References.Count(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
