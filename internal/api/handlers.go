package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"grainboard/internal/engine"
	"grainboard/internal/metrics"
	"grainboard/internal/model"
	"grainboard/internal/webhooks"
)

// filteredView loads the collection and applies the query's filter config.
func (s *Server) filteredView(r *http.Request) ([]model.Shipment, model.FilterConfig, error) {
	cfg, err := parseFilterConfig(r.URL.Query())
	if err != nil {
		return nil, cfg, err
	}
	rows, err := s.Store.ListShipments(r.Context())
	if err != nil {
		return nil, cfg, err
	}
	return engine.ApplyFilters(rows, cfg), cfg, nil
}

// ShipmentsHandler handles GET /v1/shipments
func (s *Server) ShipmentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	items := make([]model.ShipmentView, 0, len(view))
	for _, sh := range view {
		items = append(items, sh.View())
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

// SummaryHandler handles GET /v1/shipments/summary
func (s *Server) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, engine.Summarize(view))
}

// ShipmentByIDHandler handles GET/PATCH /v1/shipments/{id}
func (s *Server) ShipmentByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/shipments/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	id, err := strconv.Atoi(rest)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "bad shipment id", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		sh, err := s.Store.GetShipment(r.Context(), id)
		if err != nil {
			writeError(w, err, r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, sh.View())
	case http.MethodPatch:
		var req editRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		edit, err := req.toEdit()
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid edit", err.Error(), r.URL.Path)
			return
		}
		sh, err := s.Store.ApplyManualEdit(r.Context(), id, edit)
		if err != nil {
			writeError(w, err, r.URL.Path)
			return
		}
		if edit.TrucksRequired != nil { metrics.ManualEdits.WithLabelValues("trucks").Inc() }
		if edit.ScheduledDate != nil { metrics.ManualEdits.WithLabelValues("date").Inc() }

		data := map[string]any{"id": sh.ID, "trucksRequired": sh.TrucksRequired, "scheduledDate": sh.ScheduledDate.Format("2006-01-02"), "ts": time.Now().UTC().Format(time.RFC3339)}
		s.Pub.Emit(r.Context(), webhooks.EventShipmentUpdated, data)
		evt := SSEEvent{Type: webhooks.EventShipmentUpdated, Data: data}
		s.Broker.Publish("shipments", evt)
		s.Broker.Publish(fmt.Sprintf("shipment:%d", sh.ID), evt)

		writeJSON(w, http.StatusOK, sh.View())
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// AnalyticsByGrainHandler handles GET /v1/analytics/by-grain
func (s *Server) AnalyticsByGrainHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": engine.AggregateByGrain(view)})
}

// AnalyticsByMonthHandler handles GET /v1/analytics/by-month
func (s *Server) AnalyticsByMonthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": engine.AggregateByMonth(view)})
}

// RoutesRankingHandler handles GET /v1/routes/ranking
func (s *Server) RoutesRankingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	ranked := engine.RankRoutes(view)
	limit := len(ranked)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit { limit = n }
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": ranked[:limit]})
}

// Placeholder map coordinates: routes fan out from the Brasília region until
// real geocoding lands. Offsets are derived from the id so the map is stable
// across reloads.
const (
	mapBaseLat = -15.7801
	mapBaseLng = -47.9292
)

func mapPoint(sh model.Shipment) model.RoutePoint {
	jlat := float64((sh.ID*37)%100-50) / 100
	jlng := float64((sh.ID*53)%100-50) / 100
	// destination pushed out roughly proportional to the haul distance
	reach := sh.DistanceKm / 111 // ~km per degree
	return model.RoutePoint{
		ShipmentID: sh.ID,
		OriginLat:  mapBaseLat + jlat,
		OriginLng:  mapBaseLng + jlng,
		DestLat:    mapBaseLat + jlat + reach*0.7,
		DestLng:    mapBaseLng + jlng + reach*0.7,
		DistanceKm: sh.DistanceKm,
		Trucks:     sh.TrucksRequired,
	}
}

// RoutesMapHandler handles GET /v1/routes/map
func (s *Server) RoutesMapHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	points := make([]model.RoutePoint, 0, len(view))
	for _, sh := range view {
		points = append(points, mapPoint(sh))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": points})
}

// SimulateHandler handles POST /v1/simulate
func (s *Server) SimulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	view, _, err := s.filteredView(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error(), r.URL.Path)
		return
	}
	params := req.params(s.Fleet)
	res, err := engine.Simulate(view, params)
	if err != nil {
		metrics.Simulations.WithLabelValues("invalid").Inc()
		writeError(w, err, r.URL.Path)
		return
	}
	metrics.Simulations.WithLabelValues("ok").Inc()

	data := map[string]any{"records": len(res.PerRecord), "params": params, "deltas": res.Deltas, "ts": time.Now().UTC().Format(time.RFC3339)}
	s.Pub.Emit(r.Context(), webhooks.EventSimulationCompleted, data)
	s.Broker.Publish("shipments", SSEEvent{Type: webhooks.EventSimulationCompleted, Data: data})

	writeJSON(w, http.StatusOK, res)
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events are required", r.URL.Path)
			return
		}
		for _, e := range req.Events {
			if e != webhooks.EventShipmentUpdated && e != webhooks.EventSimulationCompleted {
				writeProblem(w, http.StatusBadRequest, "Invalid subscription", "unknown event type: "+e, r.URL.Path)
				return
			}
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeError(w, err, r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		items, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeError(w, err, r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == r.URL.Path || id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		writeError(w, err, r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventsStreamHandler handles GET /v1/events/stream (SSE). An optional
// ?shipmentId= narrows the feed to one row.
func (s *Server) EventsStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	topic := "shipments"
	if v := r.URL.Query().Get("shipmentId"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid shipmentId", err.Error(), r.URL.Path)
			return
		}
		topic = "shipment:" + v
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(topic)
	defer s.Broker.Unsubscribe(topic, ch)

	heartbeat := func() {
		fmt.Fprintf(w, "event: heartbeat\n")
		fmt.Fprintf(w, "data: {\"topic\":\"%s\",\"ts\":\"%s\"}\n\n", topic, time.Now().Format(time.RFC3339))
		flusher.Flush()
	}
	heartbeat()

	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			heartbeat()
		}
	}
}

// HealthzHandler reports process liveness.
func (s *Server) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyzHandler reports readiness; with a database source it pings it.
func (s *Server) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	if s.pg != nil {
		if err := s.pg.Ping(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
