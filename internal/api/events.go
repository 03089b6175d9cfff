package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/realtime-progress/internal/push"
)

// progressEvents holds an SSE connection open and registers it under the
// caller's client id. The handler never unregisters the stream: once it
// returns the stream is closed, and the next broadcast prunes it.
func (s *Server) progressEvents(w http.ResponseWriter, r *http.Request) {
	id := clientIDFrom(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing uuid")
		return
	}
	connID, err := s.ids.NewConnID()
	if err != nil {
		s.logger.Error("issue connection id failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open stream")
		return
	}

	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.Error("streaming unsupported", zap.Error(err))
		return
	}

	logger := s.logger.With(zap.String("client_id", id), zap.String("channel_id", connID))
	stream := push.NewStream(connID, s.cfg.StreamBuffer)
	s.registry.Register(push.ClientID(id), stream)
	logger.Debug("push channel opened")

	flush := func() {
		if err := rc.Flush(); err != nil {
			logger.Debug("flush failed", zap.Error(err))
		}
	}
	if err := stream.Serve(r.Context(), w, flush, s.cfg.Heartbeat); err != nil {
		logger.Warn("push channel closed with error", zap.Error(err))
		return
	}
	logger.Debug("push channel closed")
}
