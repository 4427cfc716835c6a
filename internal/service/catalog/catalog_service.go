package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogUseCase interface {
	CreateRoute(ctx context.Context, input RouteInput) (*domain.Route, error)
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	DeleteRoute(ctx context.Context, id string) error

	CreateVehicle(ctx context.Context, input VehicleInput) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, id string, input VehicleInput) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error

	CreateSchedule(ctx context.Context, input ScheduleInput) (*domain.Schedule, error)
	ListSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error)
	GetSchedule(ctx context.Context, id string) (*domain.Schedule, error)
	UpdateSchedulePrice(ctx context.Context, id string, priceCents int64) (*domain.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// ScheduleCache holds schedule search results. GetSchedules reports the
// cache generation it read; SetSchedules writes under that generation so a
// result read before an invalidation is never served after it.
type ScheduleCache interface {
	GetSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, int64, bool, error)
	SetSchedules(ctx context.Context, gen int64, filter domain.ScheduleFilter, schedules []domain.Schedule) error
	InvalidateSchedules(ctx context.Context) error
}

type RouteInput struct {
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	DeparturePoint string   `json:"departure_point"`
	ArrivalPoint   string   `json:"arrival_point"`
	DistanceKm     float64  `json:"distance_km"`
	Stops          []string `json:"stops"`
}

// VehicleInput creates a vehicle. On update, zero fields keep the stored value.
type VehicleInput struct {
	BusNumber    string             `json:"bus_number"`
	OperatorName string             `json:"operator_name"`
	Type         domain.VehicleType `json:"type"`
	TotalSeats   int                `json:"total_seats"`
	Layout       []string           `json:"layout"`
}

type ScheduleInput struct {
	VehicleID     string    `json:"vehicle_id"`
	RouteID       string    `json:"route_id"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	PriceCents    int64     `json:"price_cents"`
}

type CatalogService struct {
	routes    repository.RouteRepository
	vehicles  repository.VehicleRepository
	schedules repository.ScheduleRepository
	cache     ScheduleCache
	log       *zap.Logger
}

type CatalogServiceOption func(*CatalogService)

func WithCache(cache ScheduleCache) CatalogServiceOption {
	return func(s *CatalogService) {
		s.cache = cache
	}
}

func WithLogger(log *zap.Logger) CatalogServiceOption {
	return func(s *CatalogService) {
		s.log = log
	}
}

func NewCatalogService(store *repository.Store, opts ...CatalogServiceOption) *CatalogService {
	service := &CatalogService{
		routes:    store.Routes,
		vehicles:  store.Vehicles,
		schedules: store.Schedules,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *CatalogService) CreateRoute(ctx context.Context, input RouteInput) (*domain.Route, error) {
	input.Source = strings.TrimSpace(input.Source)
	input.Destination = strings.TrimSpace(input.Destination)
	switch {
	case input.Source == "":
		return nil, domain.NewValidationError("source", "is required")
	case input.Destination == "":
		return nil, domain.NewValidationError("destination", "is required")
	case strings.EqualFold(input.Source, input.Destination):
		return nil, domain.NewValidationError("destination", "must differ from source")
	case input.DistanceKm < 0:
		return nil, domain.NewValidationError("distance_km", "must not be negative")
	}

	route := &domain.Route{
		ID:             uuid.NewString(),
		Source:         input.Source,
		Destination:    input.Destination,
		DeparturePoint: input.DeparturePoint,
		ArrivalPoint:   input.ArrivalPoint,
		DistanceKm:     input.DistanceKm,
		Stops:          input.Stops,
	}
	if err := s.routes.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *CatalogService) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	return s.routes.List(ctx)
}

func (s *CatalogService) DeleteRoute(ctx context.Context, id string) error {
	if err := s.routes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) CreateVehicle(ctx context.Context, input VehicleInput) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{ID: uuid.NewString()}
	if err := applyVehicleInput(vehicle, input); err != nil {
		return nil, err
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *CatalogService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicles.List(ctx)
}

func (s *CatalogService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *CatalogService) UpdateVehicle(ctx context.Context, id string, input VehicleInput) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := VehicleInput{
		BusNumber:    firstNonEmpty(input.BusNumber, vehicle.BusNumber),
		OperatorName: firstNonEmpty(input.OperatorName, vehicle.OperatorName),
		Type:         domain.VehicleType(firstNonEmpty(string(input.Type), string(vehicle.Type))),
		TotalSeats:   vehicle.TotalSeats,
		Layout:       vehicle.Layout,
	}
	if input.Layout != nil {
		merged.Layout = input.Layout
		merged.TotalSeats = input.TotalSeats
	} else if input.TotalSeats != 0 {
		merged.TotalSeats = input.TotalSeats
	}
	if err := applyVehicleInput(vehicle, merged); err != nil {
		return nil, err
	}

	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return vehicle, nil
}

func (s *CatalogService) DeleteVehicle(ctx context.Context, id string) error {
	if err := s.vehicles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func applyVehicleInput(v *domain.Vehicle, input VehicleInput) error {
	input.BusNumber = strings.TrimSpace(input.BusNumber)
	switch {
	case input.BusNumber == "":
		return domain.NewValidationError("bus_number", "is required")
	case strings.TrimSpace(input.OperatorName) == "":
		return domain.NewValidationError("operator_name", "is required")
	case !input.Type.Valid():
		return domain.NewValidationError("type", "must be one of AC, Non-AC, Sleeper, Seater")
	case input.TotalSeats < 0:
		return domain.NewValidationError("total_seats", "must not be negative")
	}

	if len(input.Layout) > 0 {
		seen := make(map[string]struct{}, len(input.Layout))
		for _, label := range input.Layout {
			if label == "" {
				return domain.NewValidationError("layout", "contains an empty seat label")
			}
			if _, dup := seen[label]; dup {
				return domain.NewValidationError("layout", "duplicate seat "+label)
			}
			seen[label] = struct{}{}
		}
		if input.TotalSeats == 0 {
			input.TotalSeats = len(input.Layout)
		}
		if input.TotalSeats != len(input.Layout) {
			return domain.NewValidationError("total_seats", "must match the layout size")
		}
	}
	if input.TotalSeats == 0 {
		input.TotalSeats = domain.DefaultGridSeats
	}

	v.BusNumber = input.BusNumber
	v.OperatorName = strings.TrimSpace(input.OperatorName)
	v.Type = input.Type
	v.TotalSeats = input.TotalSeats
	v.Layout = input.Layout
	return nil
}

func (s *CatalogService) CreateSchedule(ctx context.Context, input ScheduleInput) (*domain.Schedule, error) {
	switch {
	case input.VehicleID == "":
		return nil, domain.NewValidationError("vehicle_id", "is required")
	case input.RouteID == "":
		return nil, domain.NewValidationError("route_id", "is required")
	case input.DepartureTime.IsZero():
		return nil, domain.NewValidationError("departure_time", "is required")
	case !input.ArrivalTime.After(input.DepartureTime):
		return nil, domain.NewValidationError("arrival_time", "must be after departure_time")
	case input.PriceCents <= 0:
		return nil, domain.NewValidationError("price_cents", "must be positive")
	}

	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	route, err := s.routes.GetByID(ctx, input.RouteID)
	if err != nil {
		return nil, err
	}

	schedule := &domain.Schedule{
		ID:            uuid.NewString(),
		VehicleID:     vehicle.ID,
		RouteID:       route.ID,
		DepartureTime: input.DepartureTime.UTC(),
		ArrivalTime:   input.ArrivalTime.UTC(),
		PriceCents:    input.PriceCents,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, err
	}
	schedule.Route = route
	schedule.Vehicle = vehicle
	s.invalidate(ctx)
	return schedule, nil
}

// ListSchedules searches schedules, serving repeated searches from the cache.
func (s *CatalogService) ListSchedules(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	filter.From = strings.TrimSpace(filter.From)
	filter.To = strings.TrimSpace(filter.To)
	if filter.Date != nil {
		d := filter.Date.UTC()
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		filter.Date = &day
	}

	fill := false
	var gen int64
	if s.cache != nil {
		cached, g, ok, err := s.cache.GetSchedules(ctx, filter)
		switch {
		case err != nil:
			s.log.Warn("schedule cache read failed", zap.Error(err))
		case ok:
			return cached, nil
		default:
			fill, gen = true, g
		}
	}

	schedules, err := s.schedules.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if fill {
		if err := s.cache.SetSchedules(ctx, gen, filter, schedules); err != nil {
			s.log.Warn("schedule cache write failed", zap.Error(err))
		}
	}
	return schedules, nil
}

func (s *CatalogService) GetSchedule(ctx context.Context, id string) (*domain.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *CatalogService) UpdateSchedulePrice(ctx context.Context, id string, priceCents int64) (*domain.Schedule, error) {
	if priceCents <= 0 {
		return nil, domain.NewValidationError("price_cents", "must be positive")
	}
	schedule, err := s.schedules.UpdatePrice(ctx, id, priceCents)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return schedule, nil
}

func (s *CatalogService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.schedules.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSchedules(ctx); err != nil {
		s.log.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ CatalogUseCase = (*CatalogService)(nil)
