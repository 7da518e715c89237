package store

import (
	"fmt"
	"time"

	"grainboard/internal/engine"
	"grainboard/internal/model"
)

// MockRecords is the size of the generated demo collection.
const MockRecords = 152

var mockGrains = []string{"Soybean", "Corn", "Wheat", "Rice"}

// GenerateMock builds the deterministic demo collection used when no
// DATABASE_URL is configured. The same index always yields the same record,
// so restarts reproduce the board exactly.
func GenerateMock(n int, p model.FleetParams) ([]model.Shipment, error) {
	base := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	out := make([]model.Shipment, 0, n)
	for i := 0; i < n; i++ {
		s := model.Shipment{
			ID:              i + 1,
			ScheduledDate:   base.AddDate(0, 0, i%48),
			DateSource:      model.SourceComputed,
			Buyer:           fmt.Sprintf("Buyer %c Ltda", 'A'+i%6),
			Seller:          fmt.Sprintf("Vendor %c Farm", 'A'+i%8),
			Grain:           mockGrains[i%len(mockGrains)],
			AllocatedAmount: 500 + (i*50)%2000,
			DistanceKm:      float64(50 + (i*10)%500),
			FreightPerUnit:  2.5 + float64(i%10)*0.5,
			ProfitMarginPct: float64(5 + i%20),
			Status:          "Scheduled",
		}
		d, err := engine.Derive(s, p)
		if err != nil {
			return nil, fmt.Errorf("mock record %d: %w", s.ID, err)
		}
		s = d.Apply(s)
		if i%10 == 9 {
			// every 10th record carries a pre-applied manual override
			s.TrucksRequired++
			s.TrucksSource = model.SourceManual
		}
		out = append(out, s)
	}
	return out, nil
}
