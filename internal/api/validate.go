package api

import (
	"fmt"
	"net/url"
	"time"

	"grainboard/internal/model"
)

// parseFilterConfig builds a view config from query parameters. Absent
// category parameters leave the filter unrestricted; category params may be
// repeated (?grain=Soybean&grain=Corn).
func parseFilterConfig(q url.Values) (model.FilterConfig, error) {
	cfg := model.FilterConfig{SortField: model.SortByScheduledDate, SortAscending: true}
	if v := q.Get("dateStart"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return cfg, fmt.Errorf("dateStart: %w", err)
		}
		cfg.DateStart = t
	}
	if v := q.Get("dateEnd"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return cfg, fmt.Errorf("dateEnd: %w", err)
		}
		cfg.DateEnd = t
	}
	if !cfg.DateStart.IsZero() && !cfg.DateEnd.IsZero() && cfg.DateEnd.Before(cfg.DateStart) {
		return cfg, fmt.Errorf("dateEnd before dateStart")
	}
	if vs, ok := q["grain"]; ok {
		cfg.Grains = model.Subset(vs...)
	}
	if vs, ok := q["seller"]; ok {
		cfg.Sellers = model.Subset(vs...)
	}
	if vs, ok := q["buyer"]; ok {
		cfg.Buyers = model.Subset(vs...)
	}
	if v := q.Get("sortField"); v != "" {
		if !validSortField(v) {
			return cfg, fmt.Errorf("unknown sortField: %s", v)
		}
		cfg.SortField = v
	}
	switch q.Get("sortDir") {
	case "", "asc":
	case "desc":
		cfg.SortAscending = false
	default:
		return cfg, fmt.Errorf("sortDir must be asc or desc")
	}
	return cfg, nil
}

func validSortField(f string) bool {
	switch f {
	case model.SortByID, model.SortByScheduledDate, model.SortByBuyer, model.SortBySeller,
		model.SortByGrain, model.SortByAmount, model.SortByDistance, model.SortByTrips,
		model.SortByTrucks, model.SortByDays, model.SortByFreight, model.SortByMargin:
		return true
	}
	return false
}

// simulateRequest is the POST /v1/simulate body. Zero fields fall back to the
// configured fleet, except work hours which default to the simulator's longer
// 12h shift.
type simulateRequest struct {
	TruckCapacity   int     `json:"truckCapacity"`
	AverageSpeedKmh float64 `json:"averageSpeedKmh"`
	WorkHoursPerDay float64 `json:"workHoursPerDay"`
	LoadUnloadHours float64 `json:"loadUnloadHours"`
}

func (req simulateRequest) params(base model.FleetParams) model.FleetParams {
	p := model.FleetParams{
		TruckCapacity:   req.TruckCapacity,
		AverageSpeedKmh: req.AverageSpeedKmh,
		WorkHoursPerDay: req.WorkHoursPerDay,
		LoadUnloadHours: req.LoadUnloadHours,
	}
	if p.TruckCapacity == 0 { p.TruckCapacity = base.TruckCapacity }
	if p.AverageSpeedKmh == 0 { p.AverageSpeedKmh = base.AverageSpeedKmh }
	if p.WorkHoursPerDay == 0 { p.WorkHoursPerDay = 12 }
	if p.LoadUnloadHours == 0 { p.LoadUnloadHours = base.LoadUnloadHours }
	return p
}

// editRequest is the PATCH /v1/shipments/{id} body.
type editRequest struct {
	TrucksRequired *int    `json:"trucksRequired,omitempty"`
	ScheduledDate  *string `json:"scheduledDate,omitempty"` // YYYY-MM-DD
}

func (req editRequest) toEdit() (model.ManualEdit, error) {
	var edit model.ManualEdit
	if req.TrucksRequired == nil && req.ScheduledDate == nil {
		return edit, fmt.Errorf("empty edit: provide trucksRequired and/or scheduledDate")
	}
	edit.TrucksRequired = req.TrucksRequired
	if req.ScheduledDate != nil {
		t, err := time.Parse("2006-01-02", *req.ScheduledDate)
		if err != nil {
			return edit, fmt.Errorf("scheduledDate: %w", err)
		}
		edit.ScheduledDate = &t
	}
	return edit, nil
}
