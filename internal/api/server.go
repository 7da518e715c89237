package api

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"grainboard/internal/config"
	"grainboard/internal/model"
	"grainboard/internal/store"
	"grainboard/internal/webhooks"
)

type Server struct {
	Store  store.Store
	Pub    *webhooks.Publisher
	Broker EventBroker
	Fleet  model.FleetParams

	cfg config.Config
	pg  *store.PostgresSource // nil when running on mock data
}

// NewServer builds the server and loads the collection. With no DATABASE_URL
// the deterministic mock collection is generated; otherwise the schedules
// database is read once and the board works on the in-memory copy.
func NewServer(cfg config.Config) (*Server, error) {
	mem := store.NewMemory()
	fleet := cfg.Fleet.Params()

	var pg *store.PostgresSource
	var rows []model.Shipment
	var err error
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		rows, err = store.GenerateMock(cfg.MockRecords, fleet)
		if err != nil {
			return nil, fmt.Errorf("generate mock collection: %w", err)
		}
	} else {
		pg, err = store.NewPostgresSource(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect schedules db: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		rows, err = pg.LoadShipments(ctx, fleet)
		if err != nil {
			return nil, fmt.Errorf("load shipments: %w", err)
		}
	}
	if err := mem.ReplaceAll(context.Background(), rows); err != nil {
		return nil, err
	}
	log.Printf("collection loaded: %d shipments", len(rows))

	// Broker selection
	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil { broker = rb } else { broker = NewBroker() }
	} else {
		broker = NewBroker()
	}

	return &Server{
		Store:  mem,
		Pub:    webhooks.NewPublisher(mem),
		Broker: broker,
		Fleet:  fleet,
		cfg:    cfg,
		pg:     pg,
	}, nil
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store, s.cfg.Webhooks.MaxAttempts)
}
