package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"grainboard/internal/engine"
	"grainboard/internal/model"
)

// PostgresSource loads the shipment collection from a schedules database at
// startup. It is read-only: the board works on its in-memory copy and never
// writes back.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(dsn string) (*PostgresSource, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresSource{db: db}, nil
}

func (p *PostgresSource) Close() error { return p.db.Close() }

func (p *PostgresSource) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// LoadShipments reads every scheduled load and derives the fleet figures
// under the given parameters. Rows the derivation rejects abort the load; a
// partially derived board is worse than an error at startup.
func (p *PostgresSource) LoadShipments(ctx context.Context, params model.FleetParams) ([]model.Shipment, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, scheduled_date, buyer, seller, grain, allocated_amount,
		       distance_km, freight_per_unit, profit_margin_pct, status
		FROM shipments
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Shipment{}
	for rows.Next() {
		var s model.Shipment
		var status sql.NullString
		if err := rows.Scan(&s.ID, &s.ScheduledDate, &s.Buyer, &s.Seller, &s.Grain,
			&s.AllocatedAmount, &s.DistanceKm, &s.FreightPerUnit, &s.ProfitMarginPct, &status); err != nil {
			return nil, err
		}
		s.Status = status.String
		if s.Status == "" { s.Status = "Scheduled" }
		s.ScheduledDate = s.ScheduledDate.UTC()
		s.DateSource = model.SourceComputed
		d, err := engine.Derive(s, params)
		if err != nil {
			return nil, fmt.Errorf("shipment %d: %w", s.ID, err)
		}
		out = append(out, d.Apply(s))
	}
	return out, rows.Err()
}
