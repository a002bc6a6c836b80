package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealthz responds with 200 and {"status":"ok"} while the database
// answers a ping within a second, and 503 otherwise.
func HandleHealthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
