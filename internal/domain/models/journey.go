package models

// Journey is one scheduled bus run a shopper can book seats on.
type Journey struct {
	ID            int64  `json:"id"`
	BusID         string `json:"bus_id"`
	RouteFrom     string `json:"route_from"`
	RouteTo       string `json:"route_to"`
	TripDate      string `json:"trip_date"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	OperatorName  string `json:"operator_name,omitempty"`
	BusType       string `json:"bus_type,omitempty"`
}

// PointKind separates boarding from dropping points.
type PointKind string

const (
	PointBoarding PointKind = "boarding"
	PointDropping PointKind = "dropping"
)

// Point is a pickup or drop-off stop on a journey.
type Point struct {
	ID       int64     `json:"id"`
	Kind     PointKind `json:"kind"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	Time     string    `json:"time"`
	Landmark string    `json:"landmark,omitempty"`
}

// JourneyPoints groups a journey's stops for step two of checkout.
type JourneyPoints struct {
	Boarding []Point `json:"boarding_points"`
	Dropping []Point `json:"dropping_points"`
}

// Find looks up a point by id in the given list.
func (jp JourneyPoints) Find(kind PointKind, id int64) (Point, bool) {
	list := jp.Boarding
	if kind == PointDropping {
		list = jp.Dropping
	}
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return Point{}, false
}
