package engine

import (
	"errors"
	"testing"

	"grainboard/internal/model"
)

func defaultParams() model.FleetParams {
	return model.FleetParams{TruckCapacity: 900, AverageSpeedKmh: 60, WorkHoursPerDay: 10, LoadUnloadHours: 2}
}

func TestDeriveTrips(t *testing.T) {
	s := model.Shipment{AllocatedAmount: 2000, DistanceKm: 100}
	d, err := Derive(s, defaultParams())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if d.TripsRequired != 3 {
		t.Fatalf("trips: got %d, want 3", d.TripsRequired)
	}
}

func TestDeriveTripsPerDay(t *testing.T) {
	// round trip = 200/60 + 2 = 5.33h; floor(12/5.33) = 2
	p := model.FleetParams{TruckCapacity: 900, AverageSpeedKmh: 60, WorkHoursPerDay: 12, LoadUnloadHours: 2}
	d, err := Derive(model.Shipment{AllocatedAmount: 2000, DistanceKm: 100}, p)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if d.TripsPerTruckPerDay != 2 {
		t.Fatalf("tripsPerDay: got %d, want 2", d.TripsPerTruckPerDay)
	}
	if d.TrucksRequired != 2 { // ceil(3/2)
		t.Fatalf("trucks: got %d, want 2", d.TrucksRequired)
	}
	if d.OperationDays != 1 { // ceil(3/(2*2))
		t.Fatalf("days: got %d, want 1", d.OperationDays)
	}
}

func TestDeriveMinimums(t *testing.T) {
	cases := []model.Shipment{
		{AllocatedAmount: 1, DistanceKm: 0},
		{AllocatedAmount: 50, DistanceKm: 500},  // round trip far beyond shift
		{AllocatedAmount: 9000, DistanceKm: 10},
	}
	for _, s := range cases {
		d, err := Derive(s, defaultParams())
		if err != nil {
			t.Fatalf("derive(%+v): %v", s, err)
		}
		if d.TripsRequired < 1 || d.TrucksRequired < 1 || d.OperationDays < 1 || d.TripsPerTruckPerDay < 1 {
			t.Fatalf("derive(%+v): got %+v, want all figures >= 1", s, d)
		}
	}
}

func TestDeriveLongRoundTripClampsToOneTripPerDay(t *testing.T) {
	// 1000 km round trip at 60 km/h never fits a 10h shift
	d, err := Derive(model.Shipment{AllocatedAmount: 900, DistanceKm: 500}, defaultParams())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if d.TripsPerTruckPerDay != 1 {
		t.Fatalf("tripsPerDay: got %d, want clamp to 1", d.TripsPerTruckPerDay)
	}
}

func TestDeriveRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		s    model.Shipment
		p    model.FleetParams
	}{
		{"zero amount", model.Shipment{AllocatedAmount: 0}, defaultParams()},
		{"negative amount", model.Shipment{AllocatedAmount: -5}, defaultParams()},
		{"negative distance", model.Shipment{AllocatedAmount: 100, DistanceKm: -1}, defaultParams()},
		{"zero capacity", model.Shipment{AllocatedAmount: 100}, model.FleetParams{AverageSpeedKmh: 60, WorkHoursPerDay: 10}},
		{"zero speed", model.Shipment{AllocatedAmount: 100}, model.FleetParams{TruckCapacity: 900, WorkHoursPerDay: 10}},
		{"zero hours", model.Shipment{AllocatedAmount: 100}, model.FleetParams{TruckCapacity: 900, AverageSpeedKmh: 60}},
	}
	for _, c := range cases {
		if _, err := Derive(c.s, c.p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: got %v, want ErrInvalidInput", c.name, err)
		}
	}
}

func TestDerivedApplyTagsComputed(t *testing.T) {
	s := model.Shipment{AllocatedAmount: 2000, DistanceKm: 100, TrucksSource: model.SourceManual}
	d, err := Derive(s, defaultParams())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	s = d.Apply(s)
	if s.TrucksSource != model.SourceComputed {
		t.Fatalf("trucksSource: got %s, want computed", s.TrucksSource)
	}
	if s.TripsRequired != d.TripsRequired || s.TrucksRequired != d.TrucksRequired || s.OperationDays != d.OperationDays {
		t.Fatalf("apply did not copy derived figures: %+v vs %+v", s, d)
	}
}
