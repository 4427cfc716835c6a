package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error)
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Schedule, error)
	Delete(ctx context.Context, id string) error
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

// scheduleSelect joins route and vehicle and folds the seat ledger into
// booked_seats. Route and vehicle may be missing after catalog deletes.
const scheduleSelect = `SELECT s.id, s.vehicle_id, s.route_id, s.departure_time, s.arrival_time, s.price_cents, s.created_at, s.updated_at,
	COALESCE((SELECT array_agg(ss.seat_label ORDER BY ss.seat_label) FROM schedule_seats ss WHERE ss.schedule_id = s.id), '{}') AS booked_seats,
	r.id, r.source, r.destination, r.departure_point, r.arrival_point, r.distance_km, r.stops, r.created_at, r.updated_at,
	v.id, v.bus_number, v.operator_name, v.type, v.total_seats, v.layout, v.created_at, v.updated_at
FROM schedules s
LEFT JOIN routes r ON r.id = s.route_id
LEFT JOIN vehicles v ON v.id = s.vehicle_id`

func (r *PGScheduleRepository) Create(ctx context.Context, s *domain.Schedule) error {
	err := r.db.QueryRow(ctx, `INSERT INTO schedules (id, vehicle_id, route_id, departure_time, arrival_time, price_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		s.ID, s.VehicleID, s.RouteID, s.DepartureTime, s.ArrivalTime, s.PriceCents).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return mapError(err, "insert schedule")
	}
	if s.BookedSeats == nil {
		s.BookedSeats = []string{}
	}
	return nil
}

func (r *PGScheduleRepository) List(ctx context.Context, filter domain.ScheduleFilter) ([]domain.Schedule, error) {
	var dayStart, dayEnd *time.Time
	if filter.Date != nil {
		start := *filter.Date
		end := start.Add(24 * time.Hour)
		dayStart, dayEnd = &start, &end
	}

	rows, err := r.db.Query(ctx, scheduleSelect+`
		WHERE ($1::text = '' OR lower(r.source) = lower($1))
		  AND ($2::text = '' OR lower(r.destination) = lower($2))
		  AND ($3::timestamptz IS NULL OR (s.departure_time >= $3 AND s.departure_time < $4))
		ORDER BY s.departure_time`,
		filter.From, filter.To, dayStart, dayEnd)
	if err != nil {
		return nil, mapError(err, "list schedules")
	}
	return collectSchedules(rows)
}

func (r *PGScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	s, err := scanSchedule(r.db.QueryRow(ctx, scheduleSelect+` WHERE s.id=$1`, id))
	if err != nil {
		return nil, mapError(err, "get schedule "+id)
	}
	return s, nil
}

func (r *PGScheduleRepository) UpdatePrice(ctx context.Context, id string, priceCents int64) (*domain.Schedule, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE schedules SET price_cents=$2, updated_at=now() WHERE id=$1`, id, priceCents)
	if err != nil {
		return nil, mapError(err, "update schedule price")
	}
	if cmd.RowsAffected() == 0 {
		return nil, mapError(pgx.ErrNoRows, "update schedule price "+id)
	}
	return r.GetByID(ctx, id)
}

func (r *PGScheduleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM schedules WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "delete schedule")
	}
	if cmd.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "delete schedule "+id)
	}
	return nil
}

// schedulesByID loads schedules for the given ids, keyed by id.
func schedulesByID(ctx context.Context, db *pgxpool.Pool, ids []string) (map[string]*domain.Schedule, error) {
	out := make(map[string]*domain.Schedule, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := db.Query(ctx, scheduleSelect+` WHERE s.id = ANY($1)`, ids)
	if err != nil {
		return nil, mapError(err, "load schedules")
	}
	list, err := collectSchedules(rows)
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	defer rows.Close()

	schedules := make([]domain.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, mapError(err, "scan schedule")
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var (
		s domain.Schedule

		routeID, source, destination, departurePoint, arrivalPoint *string
		distance                                                   *float64
		stops                                                      []string
		routeCreated, routeUpdated                                 *time.Time

		vehicleID, busNumber, operator, vehicleType *string
		totalSeats                                  *int
		layout                                      []string
		vehicleCreated, vehicleUpdated              *time.Time
	)

	if err := row.Scan(
		&s.ID, &s.VehicleID, &s.RouteID, &s.DepartureTime, &s.ArrivalTime, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt,
		&s.BookedSeats,
		&routeID, &source, &destination, &departurePoint, &arrivalPoint, &distance, &stops, &routeCreated, &routeUpdated,
		&vehicleID, &busNumber, &operator, &vehicleType, &totalSeats, &layout, &vehicleCreated, &vehicleUpdated,
	); err != nil {
		return nil, err
	}

	if routeID != nil {
		s.Route = &domain.Route{
			ID:             *routeID,
			Source:         *source,
			Destination:    *destination,
			DeparturePoint: *departurePoint,
			ArrivalPoint:   *arrivalPoint,
			DistanceKm:     *distance,
			Stops:          stops,
			CreatedAt:      *routeCreated,
			UpdatedAt:      *routeUpdated,
		}
	}
	if vehicleID != nil {
		s.Vehicle = &domain.Vehicle{
			ID:           *vehicleID,
			BusNumber:    *busNumber,
			OperatorName: *operator,
			Type:         domain.VehicleType(*vehicleType),
			TotalSeats:   *totalSeats,
			Layout:       layout,
			CreatedAt:    *vehicleCreated,
			UpdatedAt:    *vehicleUpdated,
		}
	}
	return &s, nil
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
