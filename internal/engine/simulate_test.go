package engine

import (
	"errors"
	"math"
	"testing"

	"grainboard/internal/model"
)

func TestDeltaPct(t *testing.T) {
	d := DeltaPct(100, 120)
	if !d.Defined || d.Pct != 20.0 {
		t.Fatalf("delta(100,120): %+v, want 20.0 defined", d)
	}
	d = DeltaPct(3, 2)
	if !d.Defined || d.Pct != -33.3 {
		t.Fatalf("delta(3,2): %+v, want -33.3 defined", d)
	}
}

func TestDeltaPctUndefinedAtZeroBaseline(t *testing.T) {
	if d := DeltaPct(0, 50); d.Defined {
		t.Fatalf("delta(0,50): %+v, want undefined", d)
	}
}

func simFixture() []model.Shipment {
	// Baseline figures derived under the default fleet parameters.
	in := []model.Shipment{
		{ID: 1, AllocatedAmount: 2000, DistanceKm: 100, FreightPerUnit: 3},
		{ID: 2, AllocatedAmount: 500, DistanceKm: 50, FreightPerUnit: 2.5},
		{ID: 3, AllocatedAmount: 1500, DistanceKm: 300, FreightPerUnit: 4},
	}
	for i, s := range in {
		d, err := Derive(s, defaultParams())
		if err != nil {
			panic(err)
		}
		in[i] = d.Apply(s)
	}
	return in
}

func TestSimulateBiggerTrucksReduceTrips(t *testing.T) {
	in := simFixture()
	p := defaultParams()
	p.TruckCapacity = 2000
	res, err := Simulate(in, p)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.PerRecord) != len(in) {
		t.Fatalf("per-record rows: got %d, want %d", len(res.PerRecord), len(in))
	}
	if res.Totals.Trips >= res.Baseline.Trips {
		t.Fatalf("trips did not drop: %d vs baseline %d", res.Totals.Trips, res.Baseline.Trips)
	}
	if !res.Deltas.Trips.Defined || res.Deltas.Trips.Pct >= 0 {
		t.Fatalf("trips delta: %+v, want defined negative", res.Deltas.Trips)
	}
}

func TestSimulateTotalsSumAndAverage(t *testing.T) {
	in := simFixture()
	res, err := Simulate(in, defaultParams())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	var trips, trucks int
	var days, freight float64
	for _, r := range res.PerRecord {
		trips += r.TripsRequired
		trucks += r.TrucksRequired
		days += float64(r.OperationDays)
		freight += r.FreightPerUnit
	}
	n := float64(len(in))
	if res.Totals.Trips != trips || res.Totals.Trucks != trucks {
		t.Fatalf("summed totals: %+v", res.Totals)
	}
	if math.Abs(res.Totals.AvgDays-days/n) > 1e-9 || math.Abs(res.Totals.AvgFreight-freight/n) > 1e-9 {
		t.Fatalf("averaged totals: %+v", res.Totals)
	}
}

func TestSimulateFreightDependsOnDistanceOnly(t *testing.T) {
	in := []model.Shipment{
		{ID: 1, AllocatedAmount: 500, DistanceKm: 200},
		{ID: 2, AllocatedAmount: 1900, DistanceKm: 200},
	}
	res, err := Simulate(in, defaultParams())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.PerRecord[0].FreightPerUnit != res.PerRecord[1].FreightPerUnit {
		t.Fatalf("freight varies with amount: %f vs %f",
			res.PerRecord[0].FreightPerUnit, res.PerRecord[1].FreightPerUnit)
	}
	if want := 200 * simFreightRatePerKm; res.PerRecord[0].FreightPerUnit != want {
		t.Fatalf("freight: got %f, want %f", res.PerRecord[0].FreightPerUnit, want)
	}
}

func TestSimulateIdenticalParamsGiveZeroDeltas(t *testing.T) {
	res, err := Simulate(simFixture(), defaultParams())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if res.Deltas.Trips.Pct != 0 || res.Deltas.Trucks.Pct != 0 || res.Deltas.Days.Pct != 0 {
		t.Fatalf("fleet deltas under identical params: %+v", res.Deltas)
	}
}

func TestSimulateEmptyCollection(t *testing.T) {
	res, err := Simulate(nil, defaultParams())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(res.PerRecord) != 0 {
		t.Fatalf("per-record rows: %d", len(res.PerRecord))
	}
	if res.Totals != (Totals{}) || res.Baseline != (Totals{}) {
		t.Fatalf("totals on empty collection: %+v / %+v", res.Totals, res.Baseline)
	}
	if res.Deltas.Trips.Defined || res.Deltas.Freight.Defined {
		t.Fatalf("deltas on empty collection must be undefined: %+v", res.Deltas)
	}
}

func TestSimulateRejectsInvalidParams(t *testing.T) {
	_, err := Simulate(simFixture(), model.FleetParams{TruckCapacity: 0, AverageSpeedKmh: 60, WorkHoursPerDay: 10})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}
