package model

import "time"

// ValueSource tags whether a mutable field still holds the engine-computed
// value or a manual override. Manual values are authoritative until an
// explicit recompute replaces them.
type ValueSource string

const (
	SourceComputed ValueSource = "computed"
	SourceManual   ValueSource = "manual"
)

// Shipment is one scheduled grain load between a seller and a buyer.
type Shipment struct {
	ID              int         `json:"id"`
	ScheduledDate   time.Time   `json:"scheduledDate"`
	DateSource      ValueSource `json:"dateSource"`
	Buyer           string      `json:"buyer"`
	Seller          string      `json:"seller"`
	Grain           string      `json:"grain"`
	AllocatedAmount int         `json:"allocatedAmount"` // sacks
	DistanceKm      float64     `json:"distanceKm"`
	TripsRequired   int         `json:"tripsRequired"`
	TrucksRequired  int         `json:"trucksRequired"`
	TrucksSource    ValueSource `json:"trucksSource"`
	OperationDays   int         `json:"operationDays"`
	FreightPerUnit  float64     `json:"freightPerUnit"` // per sack
	ProfitMarginPct float64     `json:"profitMarginPct"`
	Status          string      `json:"status"`
}

// ManuallyAdjusted reports whether the trucks count or the scheduled date was
// last set by a user rather than by the derivation engine.
func (s Shipment) ManuallyAdjusted() bool {
	return s.TrucksSource == SourceManual || s.DateSource == SourceManual
}

// FleetParams are the operating parameters the derivation engine runs under.
// The same type doubles as the simulator's hypothetical parameter set.
type FleetParams struct {
	TruckCapacity   int     `json:"truckCapacity"`   // sacks per truck
	AverageSpeedKmh float64 `json:"averageSpeedKmh"`
	WorkHoursPerDay float64 `json:"workHoursPerDay"`
	LoadUnloadHours float64 `json:"loadUnloadHours"` // per trip
}

// CategoryFilter is a tri-state restriction on a categorical field:
// unrestricted (zero value) keeps everything, a subset keeps members only.
// An explicit empty subset keeps nothing.
type CategoryFilter struct {
	Restricted bool     `json:"restricted"`
	Values     []string `json:"values,omitempty"`
}

// Subset returns a filter restricted to the given values.
func Subset(values ...string) CategoryFilter {
	return CategoryFilter{Restricted: true, Values: values}
}

// Unrestricted returns a filter that keeps all values.
func Unrestricted() CategoryFilter { return CategoryFilter{} }

// Match reports whether v passes the filter.
func (f CategoryFilter) Match(v string) bool {
	if !f.Restricted {
		return true
	}
	for _, x := range f.Values {
		if x == v {
			return true
		}
	}
	return false
}

// Sortable field names accepted by FilterConfig.SortField.
const (
	SortByID            = "id"
	SortByScheduledDate = "scheduledDate"
	SortByBuyer         = "buyer"
	SortBySeller        = "seller"
	SortByGrain         = "grain"
	SortByAmount        = "allocatedAmount"
	SortByDistance      = "distanceKm"
	SortByTrips         = "tripsRequired"
	SortByTrucks        = "trucksRequired"
	SortByDays          = "operationDays"
	SortByFreight       = "freightPerUnit"
	SortByMargin        = "profitMarginPct"
)

// FilterConfig selects and orders a view over the shipment collection.
// DateStart/DateEnd are inclusive calendar bounds; zero times disable the
// respective bound.
type FilterConfig struct {
	DateStart     time.Time      `json:"dateStart"`
	DateEnd       time.Time      `json:"dateEnd"`
	Grains        CategoryFilter `json:"grains"`
	Sellers       CategoryFilter `json:"sellers"`
	Buyers        CategoryFilter `json:"buyers"`
	SortField     string         `json:"sortField"`
	SortAscending bool           `json:"sortAscending"`
}

// ManualEdit is the payload of the single mutating operation. Nil fields are
// left untouched.
type ManualEdit struct {
	TrucksRequired *int       `json:"trucksRequired,omitempty"`
	ScheduledDate  *time.Time `json:"scheduledDate,omitempty"`
}

// Read models for API responses.

// ShipmentView is the wire shape of a shipment row, with the override
// bookkeeping flattened into the manuallyAdjusted flag the board renders.
type ShipmentView struct {
	ID               int     `json:"id"`
	ScheduledDate    string  `json:"scheduledDate"` // YYYY-MM-DD
	Buyer            string  `json:"buyer"`
	Seller           string  `json:"seller"`
	Grain            string  `json:"grain"`
	AllocatedAmount  int     `json:"allocatedAmount"`
	DistanceKm       float64 `json:"distanceKm"`
	TripsRequired    int     `json:"tripsRequired"`
	TrucksRequired   int     `json:"trucksRequired"`
	OperationDays    int     `json:"operationDays"`
	FreightPerUnit   float64 `json:"freightPerUnit"`
	ProfitMarginPct  float64 `json:"profitMarginPct"`
	ManuallyAdjusted bool    `json:"manuallyAdjusted"`
	Status           string  `json:"status"`
}

// View flattens a Shipment into its wire shape.
func (s Shipment) View() ShipmentView {
	return ShipmentView{
		ID:               s.ID,
		ScheduledDate:    s.ScheduledDate.Format("2006-01-02"),
		Buyer:            s.Buyer,
		Seller:           s.Seller,
		Grain:            s.Grain,
		AllocatedAmount:  s.AllocatedAmount,
		DistanceKm:       s.DistanceKm,
		TripsRequired:    s.TripsRequired,
		TrucksRequired:   s.TrucksRequired,
		OperationDays:    s.OperationDays,
		FreightPerUnit:   s.FreightPerUnit,
		ProfitMarginPct:  s.ProfitMarginPct,
		ManuallyAdjusted: s.ManuallyAdjusted(),
		Status:           s.Status,
	}
}

// BoardSummary carries the header metrics of the scheduling board.
type BoardSummary struct {
	TotalLoads        int     `json:"totalLoads"`
	TotalSacks        int     `json:"totalSacks"`
	TotalTrucks       int     `json:"totalTrucks"`
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalFreight      float64 `json:"totalFreight"`
	ManualAdjustments int     `json:"manualAdjustments"`
}

// RoutePoint is a placeholder origin/destination pair for the map view.
// Coordinates are generated, not geocoded.
type RoutePoint struct {
	ShipmentID int     `json:"shipmentId"`
	OriginLat  float64 `json:"originLat"`
	OriginLng  float64 `json:"originLng"`
	DestLat    float64 `json:"destLat"`
	DestLng    float64 `json:"destLng"`
	DistanceKm float64 `json:"distanceKm"`
	Trucks     int     `json:"trucks"`
}

// Webhook subscription models.

type SubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

type Subscription struct {
	ID     string   `json:"id"`
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret,omitempty"`
}
