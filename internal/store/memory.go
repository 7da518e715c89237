package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"grainboard/internal/model"
)

// Memory holds the whole collection in process. It is the only store the
// board mutates; a database, when configured, is just the initial source.
type Memory struct {
	mu        sync.Mutex
	shipments map[int]model.Shipment
	order     []int // insertion order of shipment ids
	subs      map[string]model.Subscription

	deliveries map[string]*memDelivery
	deliveryID []string // insertion order of delivery ids
}

func NewMemory() *Memory {
	return &Memory{
		shipments:  map[int]model.Shipment{},
		subs:       map[string]model.Subscription{},
		deliveries: map[string]*memDelivery{},
	}
}

// memDelivery augments WebhookDelivery with scheduling state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

func (m *Memory) ListShipments(ctx context.Context) ([]model.Shipment, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.Shipment, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.shipments[id])
	}
	return out, nil
}

func (m *Memory) GetShipment(ctx context.Context, id int) (model.Shipment, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok { return model.Shipment{}, ErrNotFound }
	return s, nil
}

// ApplyManualEdit overrides trucks and/or date on one shipment and tags the
// touched fields as manual. Derived figures are left as they are; overrides
// survive until an explicit recompute.
func (m *Memory) ApplyManualEdit(ctx context.Context, id int, edit model.ManualEdit) (model.Shipment, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	s, ok := m.shipments[id]
	if !ok { return model.Shipment{}, ErrNotFound }
	if edit.TrucksRequired != nil {
		n := *edit.TrucksRequired
		if n < MinManualTrucks || n > MaxManualTrucks {
			return model.Shipment{}, ErrTrucksOutOfRange
		}
		s.TrucksRequired = n
		s.TrucksSource = model.SourceManual
	}
	if edit.ScheduledDate != nil {
		s.ScheduledDate = edit.ScheduledDate.UTC()
		s.DateSource = model.SourceManual
	}
	m.shipments[id] = s
	return s, nil
}

func (m *Memory) ReplaceAll(ctx context.Context, shipments []model.Shipment) error {
	m.mu.Lock(); defer m.mu.Unlock()
	m.shipments = make(map[int]model.Shipment, len(shipments))
	m.order = make([]int, 0, len(shipments))
	for _, s := range shipments {
		m.shipments[s.ID] = s
		m.order = append(m.order, s.ID)
	}
	return nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	s := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[s.ID] = s
	return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs {
		for _, e := range s.Events {
			if e == eventType { out = append(out, s); break }
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	out := make([]model.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		s.Secret = ""
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock(); defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok { return ErrNotFound }
	delete(m.subs, id)
	return nil
}

func (m *Memory) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	id := uuid.New().String()
	d := &memDelivery{WebhookDelivery: WebhookDelivery{ID: id, SubscriptionID: subscriptionID, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: "pending"}, NextAttemptAt: time.Now()}
	m.deliveries[id] = d
	m.deliveryID = append(m.deliveryID, id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock(); defer m.mu.Unlock()
	now := time.Now()
	out := []WebhookDelivery{}
	for _, id := range m.deliveryID {
		d := m.deliveries[id]
		if d == nil { continue }
		if (d.Status == "pending" || d.Status == "retry") && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if limit > 0 && len(out) >= limit { break }
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock(); defer m.mu.Unlock()
	d := m.deliveries[id]
	if d == nil { return nil }
	d.Attempts++
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
	} else {
		d.Status = "retry"
		d.LastError = lastError
		if nextAttemptAt != nil { d.NextAttemptAt = *nextAttemptAt } else { d.NextAttemptAt = time.Now().Add(1 * time.Minute) }
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock(); defer m.mu.Unlock()
	d := m.deliveries[id]
	if d != nil {
		d.Status = "failed"
		d.LastError = lastError
		d.ResponseCode = responseCode
		d.LatencyMs = latencyMs
	}
	return nil
}
