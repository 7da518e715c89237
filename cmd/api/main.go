package main

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"grainboard/internal/api"
	"grainboard/internal/config"
	"grainboard/internal/metrics"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	srvDeps, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	// Shipments
	mux.HandleFunc("/v1/shipments", srvDeps.ShipmentsHandler)
	mux.HandleFunc("/v1/shipments/summary", srvDeps.SummaryHandler)
	mux.HandleFunc("/v1/shipments/", srvDeps.ShipmentByIDHandler)

	// Analytics
	mux.HandleFunc("/v1/analytics/by-grain", srvDeps.AnalyticsByGrainHandler)
	mux.HandleFunc("/v1/analytics/by-month", srvDeps.AnalyticsByMonthHandler)

	// Routes
	mux.HandleFunc("/v1/routes/ranking", srvDeps.RoutesRankingHandler)
	mux.HandleFunc("/v1/routes/map", srvDeps.RoutesMapHandler)

	// Simulation
	mux.HandleFunc("/v1/simulate", srvDeps.SimulateHandler)

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

	// Live events
	mux.HandleFunc("/v1/events/stream", srvDeps.EventsStreamHandler)
	mux.HandleFunc("/v1/events/ws", srvDeps.EventsWSHandler)

	// Health + ops
	mux.HandleFunc("/healthz", srvDeps.HealthzHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyzHandler)
	mux.HandleFunc("/debug", srvDeps.DebugJSON)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	addr := ":" + cfg.Port

	handler := logMiddleware(metricsMiddleware(rateMiddleware(cfg, mux)))
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	worker := srvDeps.NewWebhookWorker()
	worker.Start()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}

// statusWriter records the response code for metrics. Streaming handlers need
// the Flusher passthrough.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(c int) { w.code = c; w.ResponseWriter.WriteHeader(c) }
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets the websocket upgrade reach the underlying connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		status := strconv.Itoa(sw.code)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}

func rateMiddleware(cfg config.Config, next http.Handler) http.Handler {
	lim := rate.NewLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !lim.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
