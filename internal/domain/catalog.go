package domain

import (
	"fmt"
	"time"
)

type Route struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	DeparturePoint string    `json:"departure_point"`
	ArrivalPoint   string    `json:"arrival_point"`
	DistanceKm     float64   `json:"distance_km"`
	Stops          []string  `json:"stops"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VehicleType string

const (
	VehicleTypeAC      VehicleType = "AC"
	VehicleTypeNonAC   VehicleType = "Non-AC"
	VehicleTypeSleeper VehicleType = "Sleeper"
	VehicleTypeSeater  VehicleType = "Seater"
)

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleTypeAC, VehicleTypeNonAC, VehicleTypeSleeper, VehicleTypeSeater:
		return true
	}
	return false
}

// DefaultGridSeats is the seat count of the generated grid used when a vehicle
// declares neither a layout nor a seat count.
const DefaultGridSeats = 40

type Vehicle struct {
	ID           string      `json:"id"`
	BusNumber    string      `json:"bus_number"`
	OperatorName string      `json:"operator_name"`
	Type         VehicleType `json:"type"`
	TotalSeats   int         `json:"total_seats"`
	Layout       []string    `json:"layout"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SeatLabels returns the declared layout, or a generated grid of rows with
// four seats A-D when the layout is empty.
func (v *Vehicle) SeatLabels() []string {
	if len(v.Layout) > 0 {
		return v.Layout
	}
	n := v.TotalSeats
	if n <= 0 {
		n = DefaultGridSeats
	}
	labels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		labels = append(labels, fmt.Sprintf("%d%c", i/4+1, 'A'+rune(i%4)))
	}
	return labels
}

// UnknownSeats returns the seats that are not part of the vehicle's seat labels.
func (v *Vehicle) UnknownSeats(seats []string) []string {
	known := make(map[string]struct{})
	for _, label := range v.SeatLabels() {
		known[label] = struct{}{}
	}
	var unknown []string
	for _, seat := range seats {
		if _, ok := known[seat]; !ok {
			unknown = append(unknown, seat)
		}
	}
	return unknown
}
