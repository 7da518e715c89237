package engine

import (
	"grainboard/internal/model"
)

// RevenueMultiplier is the fixed markup applied over raw freight when
// reporting revenue.
const RevenueMultiplier = 1.2

// GrainSummary is one bar/slice of the per-grain charts.
type GrainSummary struct {
	Grain        string  `json:"grain"`
	TotalAmount  int     `json:"totalAmount"`
	TotalRevenue float64 `json:"totalRevenue"`
	Count        int     `json:"count"`
}

// MonthSummary is one point of the per-month fleet charts.
type MonthSummary struct {
	Label       string `json:"label"` // e.g. "Jun 25"
	TotalTrips  int    `json:"totalTrips"`
	TotalTrucks int    `json:"totalTrucks"`
}

// Revenue is the reported revenue of a single shipment.
func Revenue(s model.Shipment) float64 {
	return float64(s.AllocatedAmount) * s.FreightPerUnit * RevenueMultiplier
}

// AggregateByGrain reduces the collection into per-grain totals. Groups appear
// in first-seen order, which is what the charts render.
func AggregateByGrain(in []model.Shipment) []GrainSummary {
	idx := map[string]int{}
	out := []GrainSummary{}
	for _, s := range in {
		i, ok := idx[s.Grain]
		if !ok {
			i = len(out)
			idx[s.Grain] = i
			out = append(out, GrainSummary{Grain: s.Grain})
		}
		out[i].TotalAmount += s.AllocatedAmount
		out[i].TotalRevenue += Revenue(s)
		out[i].Count++
	}
	return out
}

// AggregateByMonth reduces the collection into per calendar-month fleet
// totals; records in the same month/year merge regardless of day.
func AggregateByMonth(in []model.Shipment) []MonthSummary {
	idx := map[string]int{}
	out := []MonthSummary{}
	for _, s := range in {
		label := s.ScheduledDate.Format("Jan 06")
		i, ok := idx[label]
		if !ok {
			i = len(out)
			idx[label] = i
			out = append(out, MonthSummary{Label: label})
		}
		out[i].TotalTrips += s.TripsRequired
		out[i].TotalTrucks += s.TrucksRequired
	}
	return out
}

// Summarize computes the board header metrics over a (typically filtered)
// view of the collection.
func Summarize(in []model.Shipment) model.BoardSummary {
	sum := model.BoardSummary{TotalLoads: len(in)}
	for _, s := range in {
		sum.TotalSacks += s.AllocatedAmount
		sum.TotalTrucks += s.TrucksRequired
		sum.TotalRevenue += Revenue(s)
		sum.TotalFreight += float64(s.AllocatedAmount) * s.FreightPerUnit
		if s.ManuallyAdjusted() {
			sum.ManualAdjustments++
		}
	}
	return sum
}
