package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks that a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness and, when a pinger is given, database reachability
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				respondWithJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		respondWithJSON(w, http.StatusOK, status)
	}
}
