package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
)

// memoryDB keeps every table behind one lock. Reads hand out copies so
// callers never alias stored slices.
type memoryDB struct {
	mu        sync.RWMutex
	routes    map[string]domain.Route
	vehicles  map[string]domain.Vehicle
	// schedules carry the seat ledger in BookedSeats, changed only through
	// Schedule.Reserve and Schedule.Release under mu.
	schedules map[string]domain.Schedule
	bookings  map[string]domain.Booking
	tickets   map[string]domain.SupportTicket
	now       func() time.Time
}

// NewMemoryStore returns a Store backed by process memory. It is used when no
// database is configured and in tests.
func NewMemoryStore() *Store {
	db := &memoryDB{
		routes:    make(map[string]domain.Route),
		vehicles:  make(map[string]domain.Vehicle),
		schedules: make(map[string]domain.Schedule),
		bookings:  make(map[string]domain.Booking),
		tickets:   make(map[string]domain.SupportTicket),
		now:       func() time.Time { return time.Now().UTC() },
	}
	return &Store{
		Routes:    &memRoutes{db},
		Vehicles:  &memVehicles{db},
		Schedules: &memSchedules{db},
		Bookings:  &memBookings{db},
		Support:   &memSupport{db},
	}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
}

type memRoutes struct{ db *memoryDB }

func (r *memRoutes) Create(_ context.Context, route *domain.Route) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.routes[route.ID]; ok {
		return fmt.Errorf("insert route: %w", domain.ErrConflict)
	}
	route.CreatedAt = r.db.now()
	route.UpdatedAt = route.CreatedAt
	if route.Stops == nil {
		route.Stops = []string{}
	}
	stored := *route
	stored.Stops = slices.Clone(route.Stops)
	r.db.routes[route.ID] = stored
	return nil
}

func (r *memRoutes) List(_ context.Context) ([]domain.Route, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	routes := make([]domain.Route, 0, len(r.db.routes))
	for _, route := range r.db.routes {
		routes = append(routes, copyRoute(route))
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Source != routes[j].Source {
			return routes[i].Source < routes[j].Source
		}
		return routes[i].Destination < routes[j].Destination
	})
	return routes, nil
}

func (r *memRoutes) GetByID(_ context.Context, id string) (*domain.Route, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	route, ok := r.db.routes[id]
	if !ok {
		return nil, notFound("get route", id)
	}
	out := copyRoute(route)
	return &out, nil
}

func (r *memRoutes) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.routes[id]; !ok {
		return notFound("delete route", id)
	}
	delete(r.db.routes, id)
	return nil
}

type memVehicles struct{ db *memoryDB }

func (r *memVehicles) Create(_ context.Context, v *domain.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.vehicles[v.ID]; ok {
		return fmt.Errorf("insert vehicle: %w", domain.ErrConflict)
	}
	if err := r.busNumberTaken(v.BusNumber, v.ID); err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	v.CreatedAt = r.db.now()
	v.UpdatedAt = v.CreatedAt
	v.Layout = layoutOrEmpty(v.Layout)
	r.db.vehicles[v.ID] = copyVehicle(*v)
	return nil
}

func (r *memVehicles) List(_ context.Context) ([]domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	vehicles := make([]domain.Vehicle, 0, len(r.db.vehicles))
	for _, v := range r.db.vehicles {
		vehicles = append(vehicles, copyVehicle(v))
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].BusNumber < vehicles[j].BusNumber })
	return vehicles, nil
}

func (r *memVehicles) GetByID(_ context.Context, id string) (*domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	v, ok := r.db.vehicles[id]
	if !ok {
		return nil, notFound("get vehicle", id)
	}
	out := copyVehicle(v)
	return &out, nil
}

func (r *memVehicles) Update(_ context.Context, v *domain.Vehicle) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.vehicles[v.ID]
	if !ok {
		return notFound("update vehicle", v.ID)
	}
	if err := r.busNumberTaken(v.BusNumber, v.ID); err != nil {
		return fmt.Errorf("update vehicle %s: %w", v.ID, err)
	}
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = r.db.now()
	v.Layout = layoutOrEmpty(v.Layout)
	r.db.vehicles[v.ID] = copyVehicle(*v)
	return nil
}

func (r *memVehicles) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.vehicles[id]; !ok {
		return notFound("delete vehicle", id)
	}
	delete(r.db.vehicles, id)
	return nil
}

func (r *memVehicles) busNumberTaken(busNumber, exceptID string) error {
	for id, v := range r.db.vehicles {
		if id != exceptID && v.BusNumber == busNumber {
			return fmt.Errorf("bus number %s: %w", busNumber, domain.ErrConflict)
		}
	}
	return nil
}

type memSchedules struct{ db *memoryDB }

func (r *memSchedules) Create(_ context.Context, s *domain.Schedule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.schedules[s.ID]; ok {
		return fmt.Errorf("insert schedule: %w", domain.ErrConflict)
	}
	s.CreatedAt = r.db.now()
	s.UpdatedAt = s.CreatedAt
	s.BookedSeats = []string{}
	stored := *s
	stored.Route, stored.Vehicle, stored.BookedSeats = nil, nil, nil
	r.db.schedules[s.ID] = stored
	return nil
}

func (r *memSchedules) List(_ context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	schedules := make([]domain.Schedule, 0)
	for _, stored := range r.db.schedules {
		s := r.db.hydrate(stored)
		if !matches(s, filter) {
			continue
		}
		schedules = append(schedules, s)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].DepartureTime.Before(schedules[j].DepartureTime) })
	return schedules, nil
}

func (r *memSchedules) GetByID(_ context.Context, id string) (*domain.Schedule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored, ok := r.db.schedules[id]
	if !ok {
		return nil, notFound("get schedule", id)
	}
	s := r.db.hydrate(stored)
	return &s, nil
}

func (r *memSchedules) UpdatePrice(_ context.Context, id string, priceCents int64) (*domain.Schedule, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.schedules[id]
	if !ok {
		return nil, notFound("update schedule price", id)
	}
	stored.PriceCents = priceCents
	stored.UpdatedAt = r.db.now()
	r.db.schedules[id] = stored
	s := r.db.hydrate(stored)
	return &s, nil
}

func (r *memSchedules) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.schedules[id]; !ok {
		return notFound("delete schedule", id)
	}
	delete(r.db.schedules, id)
	return nil
}

func matches(s domain.Schedule, f domain.ScheduleFilter) bool {
	if f.From != "" && (s.Route == nil || !strings.EqualFold(s.Route.Source, f.From)) {
		return false
	}
	if f.To != "" && (s.Route == nil || !strings.EqualFold(s.Route.Destination, f.To)) {
		return false
	}
	if f.Date != nil {
		end := f.Date.Add(24 * time.Hour)
		if s.DepartureTime.Before(*f.Date) || !s.DepartureTime.Before(end) {
			return false
		}
	}
	return true
}

// hydrate joins a stored schedule with its route, vehicle and ledger seats.
// Callers hold the lock.
func (db *memoryDB) hydrate(stored domain.Schedule) domain.Schedule {
	s := stored
	s.BookedSeats = append(make([]string, 0, len(stored.BookedSeats)), stored.BookedSeats...)
	sort.Strings(s.BookedSeats)
	if route, ok := db.routes[s.RouteID]; ok {
		rc := copyRoute(route)
		s.Route = &rc
	}
	if v, ok := db.vehicles[s.VehicleID]; ok {
		vc := copyVehicle(v)
		s.Vehicle = &vc
	}
	return s
}

type memBookings struct{ db *memoryDB }

func (r *memBookings) Commit(_ context.Context, b *domain.Booking) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	schedule, ok := r.db.schedules[b.ScheduleID]
	if !ok {
		return notFound("lock schedule", b.ScheduleID)
	}
	if _, ok := r.db.bookings[b.ID]; ok {
		return fmt.Errorf("insert booking: %w", domain.ErrConflict)
	}

	if !schedule.IsAvailable(b.Seats) {
		return &domain.SeatConflictError{Seats: schedule.Overlap(b.Seats)}
	}
	schedule.Reserve(b.Seats)
	r.db.schedules[b.ScheduleID] = schedule

	b.CreatedAt = r.db.now()
	b.UpdatedAt = b.CreatedAt
	r.db.bookings[b.ID] = copyBooking(*b)
	return nil
}

func (r *memBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	b, ok := r.db.bookings[id]
	if !ok {
		return nil, notFound("get booking", id)
	}
	out := copyBooking(b)
	return &out, nil
}

func (r *memBookings) Cancel(_ context.Context, id string) (*domain.Booking, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b, ok := r.db.bookings[id]
	if !ok {
		return nil, notFound("get booking", id)
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	// An active booking owns exactly its seats.
	if schedule, ok := r.db.schedules[b.ScheduleID]; ok {
		schedule.Release(b.Seats)
		r.db.schedules[b.ScheduleID] = schedule
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = r.db.now()
	r.db.bookings[id] = b

	out := copyBooking(b)
	return &out, nil
}

func (r *memBookings) ListByUser(_ context.Context, userID string) ([]domain.BookingDetails, error) {
	return r.list(func(b domain.Booking) bool { return b.UserID == userID }), nil
}

func (r *memBookings) ListAll(_ context.Context) ([]domain.BookingDetails, error) {
	return r.list(func(domain.Booking) bool { return true }), nil
}

func (r *memBookings) list(keep func(domain.Booking) bool) []domain.BookingDetails {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	details := make([]domain.BookingDetails, 0)
	for _, b := range r.db.bookings {
		if !keep(b) {
			continue
		}
		d := domain.BookingDetails{Booking: copyBooking(b)}
		if stored, ok := r.db.schedules[b.ScheduleID]; ok {
			s := r.db.hydrate(stored)
			d.Schedule = &s
		}
		details = append(details, d)
	}
	sort.Slice(details, func(i, j int) bool {
		if !details[i].CreatedAt.Equal(details[j].CreatedAt) {
			return details[i].CreatedAt.After(details[j].CreatedAt)
		}
		return details[i].ID < details[j].ID
	})
	return details
}

type memSupport struct{ db *memoryDB }

func (r *memSupport) Create(_ context.Context, t *domain.SupportTicket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tickets[t.ID]; ok {
		return fmt.Errorf("insert support ticket: %w", domain.ErrConflict)
	}
	t.CreatedAt = r.db.now()
	t.UpdatedAt = t.CreatedAt
	r.db.tickets[t.ID] = *t
	return nil
}

func (r *memSupport) List(_ context.Context) ([]domain.SupportTicket, error) {
	return r.list(func(domain.SupportTicket) bool { return true }), nil
}

func (r *memSupport) ListByUser(_ context.Context, userID string) ([]domain.SupportTicket, error) {
	return r.list(func(t domain.SupportTicket) bool { return t.UserID == userID }), nil
}

func (r *memSupport) GetByID(_ context.Context, id string) (*domain.SupportTicket, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	t, ok := r.db.tickets[id]
	if !ok {
		return nil, notFound("get support ticket", id)
	}
	return &t, nil
}

func (r *memSupport) Update(_ context.Context, t *domain.SupportTicket) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	existing, ok := r.db.tickets[t.ID]
	if !ok {
		return notFound("update support ticket", t.ID)
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.db.now()
	r.db.tickets[t.ID] = *t
	return nil
}

func (r *memSupport) list(keep func(domain.SupportTicket) bool) []domain.SupportTicket {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	tickets := make([]domain.SupportTicket, 0)
	for _, t := range r.db.tickets {
		if keep(t) {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool {
		if !tickets[i].CreatedAt.Equal(tickets[j].CreatedAt) {
			return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
		}
		return tickets[i].ID < tickets[j].ID
	})
	return tickets
}

func copyRoute(r domain.Route) domain.Route {
	r.Stops = slices.Clone(r.Stops)
	return r
}

func copyVehicle(v domain.Vehicle) domain.Vehicle {
	v.Layout = slices.Clone(v.Layout)
	return v
}

func copyBooking(b domain.Booking) domain.Booking {
	b.Seats = slices.Clone(b.Seats)
	return b
}

var (
	_ RouteRepository    = (*memRoutes)(nil)
	_ VehicleRepository  = (*memVehicles)(nil)
	_ ScheduleRepository = (*memSchedules)(nil)
	_ BookingRepository  = (*memBookings)(nil)
	_ SupportRepository  = (*memSupport)(nil)
)
