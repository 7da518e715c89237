package engine

import (
	"math"

	"grainboard/internal/model"
)

// simFreightRatePerKm is the simulator's simplified freight model: the
// per-sack rate depends only on distance. (The original formula multiplied
// and then divided by the allocated amount, so the amount cancels out.)
const simFreightRatePerKm = 0.15

// SimulatedShipment is one shipment re-derived under hypothetical parameters.
type SimulatedShipment struct {
	ID             int     `json:"id"`
	TripsRequired  int     `json:"tripsRequired"`
	TrucksRequired int     `json:"trucksRequired"`
	OperationDays  int     `json:"operationDays"`
	FreightPerUnit float64 `json:"freightPerUnit"`
}

// Totals reduces per-record figures across a collection: trips and trucks are
// summed, days and freight averaged.
type Totals struct {
	Trips      int     `json:"trips"`
	Trucks     int     `json:"trucks"`
	AvgDays    float64 `json:"avgDays"`
	AvgFreight float64 `json:"avgFreight"`
}

// Delta is a percentage change against baseline. Defined is false when the
// baseline is zero, in which case Pct is meaningless and must not be shown.
type Delta struct {
	Pct     float64 `json:"pct"`
	Defined bool    `json:"defined"`
}

// DeltaPct computes (simulated-baseline)/baseline as a percentage rounded to
// one decimal place. A zero baseline yields an undefined delta, never Inf.
func DeltaPct(baseline, simulated float64) Delta {
	if baseline == 0 {
		return Delta{}
	}
	pct := (simulated - baseline) / baseline * 100
	return Delta{Pct: math.Round(pct*10) / 10, Defined: true}
}

// Comparison holds the headline deltas of a simulation run.
type Comparison struct {
	Trips   Delta `json:"trips"`
	Trucks  Delta `json:"trucks"`
	Days    Delta `json:"days"`
	Freight Delta `json:"freight"`
}

// SimulationResult is the full output of a what-if run.
type SimulationResult struct {
	PerRecord []SimulatedShipment `json:"perRecord"`
	Totals    Totals              `json:"totals"`
	Baseline  Totals              `json:"baseline"`
	Deltas    Comparison          `json:"deltas"`
}

// Simulate re-derives every shipment under the hypothetical parameters and
// compares the reduced figures against the collection's current values. The
// input collection is not modified.
func Simulate(in []model.Shipment, p model.FleetParams) (SimulationResult, error) {
	if err := ValidateParams(p); err != nil {
		return SimulationResult{}, err
	}
	res := SimulationResult{PerRecord: make([]SimulatedShipment, 0, len(in))}
	for _, s := range in {
		d, err := Derive(s, p)
		if err != nil {
			return SimulationResult{}, err
		}
		sim := SimulatedShipment{
			ID:             s.ID,
			TripsRequired:  d.TripsRequired,
			TrucksRequired: d.TrucksRequired,
			OperationDays:  d.OperationDays,
			FreightPerUnit: s.DistanceKm * simFreightRatePerKm,
		}
		res.PerRecord = append(res.PerRecord, sim)

		res.Totals.Trips += sim.TripsRequired
		res.Totals.Trucks += sim.TrucksRequired
		res.Totals.AvgDays += float64(sim.OperationDays)
		res.Totals.AvgFreight += sim.FreightPerUnit

		res.Baseline.Trips += s.TripsRequired
		res.Baseline.Trucks += s.TrucksRequired
		res.Baseline.AvgDays += float64(s.OperationDays)
		res.Baseline.AvgFreight += s.FreightPerUnit
	}
	if n := float64(len(in)); n > 0 {
		res.Totals.AvgDays /= n
		res.Totals.AvgFreight /= n
		res.Baseline.AvgDays /= n
		res.Baseline.AvgFreight /= n
	}
	res.Deltas = Comparison{
		Trips:   DeltaPct(float64(res.Baseline.Trips), float64(res.Totals.Trips)),
		Trucks:  DeltaPct(float64(res.Baseline.Trucks), float64(res.Totals.Trucks)),
		Days:    DeltaPct(res.Baseline.AvgDays, res.Totals.AvgDays),
		Freight: DeltaPct(res.Baseline.AvgFreight, res.Totals.AvgFreight),
	}
	return res, nil
}
