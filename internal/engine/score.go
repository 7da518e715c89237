package engine

import (
	"sort"

	"grainboard/internal/model"
)

// Score bands as rendered by the board.
const (
	BandExcellent = "Excellent"
	BandGood      = "Good"
	BandRegular   = "Regular"
)

// Score blends margin (40%), distance (30%, shorter is better), volume (20%,
// smaller is better) and a +10 bonus for manually adjusted loads.
//
// The distance and volume terms go negative beyond 500 km / 2000 sacks. That
// is deliberate: outliers past the normalization bounds are penalized rather
// than clamped.
func Score(s model.Shipment) float64 {
	score := s.ProfitMarginPct * 0.4
	score += (500 - s.DistanceKm) / 500 * 30
	score += (2000 - float64(s.AllocatedAmount)) / 2000 * 20
	if s.ManuallyAdjusted() {
		score += 10
	}
	return score
}

// Classify maps a score to its display band. Boundaries are strict: exactly
// 40 is Good, exactly 25 is Regular.
func Classify(score float64) string {
	switch {
	case score > 40:
		return BandExcellent
	case score > 25:
		return BandGood
	default:
		return BandRegular
	}
}

// RankedRoute is one row of the route-optimization table.
type RankedRoute struct {
	Shipment model.ShipmentView `json:"shipment"`
	Score    float64            `json:"score"`
	Band     string             `json:"band"`
}

// RankRoutes scores every shipment and orders the result descending by score.
// The sort is stable so ties keep the input order.
func RankRoutes(in []model.Shipment) []RankedRoute {
	out := make([]RankedRoute, 0, len(in))
	for _, s := range in {
		sc := Score(s)
		out = append(out, RankedRoute{Shipment: s.View(), Score: sc, Band: Classify(sc)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
