package store

import (
	"context"
	"errors"
	"time"

	"grainboard/internal/model"
)

// Store owns the shipment collection and the webhook subscription state used
// by the API server.
type Store interface {
	// Shipments
	ListShipments(ctx context.Context) ([]model.Shipment, error)
	GetShipment(ctx context.Context, id int) (model.Shipment, error)
	ApplyManualEdit(ctx context.Context, id int, edit model.ManualEdit) (model.Shipment, error)
	ReplaceAll(ctx context.Context, shipments []model.Shipment) error

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
}

var ErrNotFound = errors.New("not found")

// Manual truck overrides outside this range are rejected before they reach
// the collection.
const (
	MinManualTrucks = 1
	MaxManualTrucks = 50
)

var ErrTrucksOutOfRange = errors.New("trucksRequired out of range")
