package handler

import (
	"encoding/json"
	"net/http"

	"github.com/attaboy/fairway/internal/infra"
)

// HealthHandler returns a health check endpoint. A nil pinger means the
// in-memory store is in use and there is nothing to ping.
func HealthHandler(db infra.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := infra.HealthCheck(r.Context(), db); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}
