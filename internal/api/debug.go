package api

import (
	"encoding/json"
	"net/http"
	"time"

	"grainboard/internal/buildinfo"
)

func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"PORT":                 s.cfg.Port,
			"RATE_RPS":             s.cfg.RateRPS,
			"RATE_BURST":           s.cfg.RateBurst,
			"MOCK_RECORDS":         s.cfg.MockRecords,
			"WEBHOOK_MAX_ATTEMPTS": s.cfg.Webhooks.MaxAttempts,
			"FLEET":                s.Fleet,
			"HAS_DATABASE_URL":     s.cfg.DatabaseURL != "",
			"HAS_REDIS_URL":        s.cfg.RedisURL != "",
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
