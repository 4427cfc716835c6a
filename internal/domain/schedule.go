package domain

import "time"

type Schedule struct {
	ID            string    `json:"id"`
	VehicleID     string    `json:"vehicle_id"`
	RouteID       string    `json:"route_id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	PriceCents    int64     `json:"price_cents"`
	// BookedSeats is the projection of the seat ledger: every seat held by a
	// non-cancelled booking on this schedule.
	BookedSeats []string  `json:"booked_seats"`
	Route       *Route    `json:"route,omitempty"`
	Vehicle     *Vehicle  `json:"vehicle,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlap returns the requested seats that are already booked, in request order.
func (s *Schedule) Overlap(seats []string) []string {
	booked := make(map[string]struct{}, len(s.BookedSeats))
	for _, seat := range s.BookedSeats {
		booked[seat] = struct{}{}
	}
	var taken []string
	for _, seat := range seats {
		if _, ok := booked[seat]; ok {
			taken = append(taken, seat)
		}
	}
	return taken
}

func (s *Schedule) IsAvailable(seats []string) bool {
	return len(s.Overlap(seats)) == 0
}

// Reserve appends seats to the ledger projection. Callers check availability first.
func (s *Schedule) Reserve(seats []string) {
	s.BookedSeats = append(s.BookedSeats, seats...)
}

// Release removes exactly the given seats from the ledger projection.
func (s *Schedule) Release(seats []string) {
	drop := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		drop[seat] = struct{}{}
	}
	kept := s.BookedSeats[:0]
	for _, seat := range s.BookedSeats {
		if _, ok := drop[seat]; !ok {
			kept = append(kept, seat)
		}
	}
	s.BookedSeats = kept
}

// ScheduleFilter narrows a schedule search. Empty fields are ignored.
type ScheduleFilter struct {
	From string     `json:"from,omitempty"`
	To   string     `json:"to,omitempty"`
	Date *time.Time `json:"date,omitempty"`
}
