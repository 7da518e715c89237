package engine

import (
	"sort"
	"time"

	"grainboard/internal/model"
)

// ApplyFilters returns the filtered, ordered view of the collection described
// by cfg. The input slice is never modified; the same config on the same
// collection always yields the same ordering.
func ApplyFilters(in []model.Shipment, cfg model.FilterConfig) []model.Shipment {
	out := make([]model.Shipment, 0, len(in))
	for _, s := range in {
		if !inDateRange(s.ScheduledDate, cfg.DateStart, cfg.DateEnd) {
			continue
		}
		if !cfg.Grains.Match(s.Grain) || !cfg.Sellers.Match(s.Seller) || !cfg.Buyers.Match(s.Buyer) {
			continue
		}
		out = append(out, s)
	}
	field := cfg.SortField
	if field == "" {
		field = model.SortByScheduledDate
	}
	// Stable so equal keys keep their collection order.
	sort.SliceStable(out, func(i, j int) bool {
		less := fieldLess(out[i], out[j], field)
		if cfg.SortAscending {
			return less
		}
		return fieldLess(out[j], out[i], field)
	})
	return out
}

// inDateRange checks start <= d <= end on calendar days; a zero bound is open.
func inDateRange(d, start, end time.Time) bool {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	v := day(d)
	if !start.IsZero() && v.Before(day(start)) {
		return false
	}
	if !end.IsZero() && v.After(day(end)) {
		return false
	}
	return true
}

func fieldLess(a, b model.Shipment, field string) bool {
	switch field {
	case model.SortByID:
		return a.ID < b.ID
	case model.SortByBuyer:
		return a.Buyer < b.Buyer
	case model.SortBySeller:
		return a.Seller < b.Seller
	case model.SortByGrain:
		return a.Grain < b.Grain
	case model.SortByAmount:
		return a.AllocatedAmount < b.AllocatedAmount
	case model.SortByDistance:
		return a.DistanceKm < b.DistanceKm
	case model.SortByTrips:
		return a.TripsRequired < b.TripsRequired
	case model.SortByTrucks:
		return a.TrucksRequired < b.TrucksRequired
	case model.SortByDays:
		return a.OperationDays < b.OperationDays
	case model.SortByFreight:
		return a.FreightPerUnit < b.FreightPerUnit
	case model.SortByMargin:
		return a.ProfitMarginPct < b.ProfitMarginPct
	default: // scheduledDate
		return a.ScheduledDate.Before(b.ScheduledDate)
	}
}
