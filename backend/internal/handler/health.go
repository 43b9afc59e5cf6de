package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/oboe-board/oboe/shared/logger"
)

const readyTimeout = 2 * time.Second

func writeProbe(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// Health answers as long as the process serves requests. It never touches the store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, http.StatusOK, "ok")
}

// Ready pings the record store. A store that does not answer within readyTimeout
// takes the instance out of rotation.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		writeProbe(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeProbe(w, http.StatusOK, "ok")
}
