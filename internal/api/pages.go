package api

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/push"
)

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	id, err := s.ids.NewID()
	if err != nil {
		s.logger.Error("issue client id failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue client id")
		return
	}
	s.renderPage(w, id)
}

// startJob runs the job for the caller's client id and blocks until it
// finishes; progress reaches the browser over its SSE stream meanwhile.
func (s *Server) startJob(w http.ResponseWriter, r *http.Request) {
	id := clientIDFrom(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing uuid")
		return
	}
	notifier := push.NewNotifier(s.registry, push.ClientID(id), s.pages, s.logger.Named("notifier"))
	res := s.runner.Run(r.Context(), id, notifier)
	s.logger.Debug("job request finished",
		zap.String("client_id", id),
		zap.String("job_id", res.JobID),
		zap.Int("steps", res.Steps),
	)
	s.renderPage(w, id)
}

func (s *Server) renderPage(w http.ResponseWriter, clientID string) {
	var buf bytes.Buffer
	if err := s.pages.RenderPage(&buf, clientID); err != nil {
		s.logger.Error("render page failed", zap.String("client_id", clientID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("write page failed", zap.Error(err))
	}
}
