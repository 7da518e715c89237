// Package engine holds the board's pure computations: derivation of fleet
// figures from a shipment, view filtering, chart aggregation, route scoring,
// and the what-if simulator. Nothing here mutates its inputs.
package engine

import (
	"errors"
	"fmt"
	"math"

	"grainboard/internal/model"
)

// ErrInvalidInput marks degenerate arguments rejected before any arithmetic
// runs, so callers never see NaN or Inf in derived figures.
var ErrInvalidInput = errors.New("invalid input")

// Derived is the result of running a shipment through the fleet arithmetic.
type Derived struct {
	TripsRequired       int     `json:"tripsRequired"`
	TrucksRequired      int     `json:"trucksRequired"`
	OperationDays       int     `json:"operationDays"`
	TripsPerTruckPerDay int     `json:"tripsPerTruckPerDay"`
	RoundTripHours      float64 `json:"roundTripHours"`
}

// ValidateParams rejects fleet parameters that would divide by zero or
// produce negative throughput.
func ValidateParams(p model.FleetParams) error {
	if p.TruckCapacity <= 0 {
		return fmt.Errorf("%w: truckCapacity must be > 0, got %d", ErrInvalidInput, p.TruckCapacity)
	}
	if p.AverageSpeedKmh <= 0 {
		return fmt.Errorf("%w: averageSpeedKmh must be > 0, got %g", ErrInvalidInput, p.AverageSpeedKmh)
	}
	if p.WorkHoursPerDay <= 0 {
		return fmt.Errorf("%w: workHoursPerDay must be > 0, got %g", ErrInvalidInput, p.WorkHoursPerDay)
	}
	if p.LoadUnloadHours < 0 {
		return fmt.Errorf("%w: loadUnloadHours must be >= 0, got %g", ErrInvalidInput, p.LoadUnloadHours)
	}
	return nil
}

// Derive computes trips, trucks and operating days for one shipment under the
// given fleet parameters.
//
// A truck is always credited with at least one trip per working day, even
// when the round trip nominally exceeds the shift; zero throughput is never
// reported.
func Derive(s model.Shipment, p model.FleetParams) (Derived, error) {
	if err := ValidateParams(p); err != nil {
		return Derived{}, err
	}
	if s.AllocatedAmount <= 0 {
		return Derived{}, fmt.Errorf("%w: allocatedAmount must be > 0, got %d", ErrInvalidInput, s.AllocatedAmount)
	}
	if s.DistanceKm < 0 {
		return Derived{}, fmt.Errorf("%w: distanceKm must be >= 0, got %g", ErrInvalidInput, s.DistanceKm)
	}

	trips := int(math.Ceil(float64(s.AllocatedAmount) / float64(p.TruckCapacity)))
	if trips < 1 {
		trips = 1
	}
	roundTrip := (2*s.DistanceKm)/p.AverageSpeedKmh + p.LoadUnloadHours
	perDay := trips // zero-length round trip: one truck clears everything in a day
	if roundTrip > 0 {
		perDay = int(math.Floor(p.WorkHoursPerDay / roundTrip))
	}
	if perDay < 1 {
		perDay = 1
	}
	trucks := int(math.Ceil(float64(trips) / float64(perDay)))
	if trucks < 1 {
		trucks = 1
	}
	days := int(math.Ceil(float64(trips) / float64(trucks*perDay)))
	if days < 1 {
		days = 1
	}
	return Derived{
		TripsRequired:       trips,
		TrucksRequired:      trucks,
		OperationDays:       days,
		TripsPerTruckPerDay: perDay,
		RoundTripHours:      roundTrip,
	}, nil
}

// Apply writes the derived figures back onto a shipment, tagging both mutable
// fields as computed. Manual overrides must go through the store instead.
func (d Derived) Apply(s model.Shipment) model.Shipment {
	s.TripsRequired = d.TripsRequired
	s.TrucksRequired = d.TrucksRequired
	s.TrucksSource = model.SourceComputed
	s.OperationDays = d.OperationDays
	return s
}
