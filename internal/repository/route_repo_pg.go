package repository

import (
	"context"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	List(ctx context.Context) ([]domain.Route, error)
	GetByID(ctx context.Context, id string) (*domain.Route, error)
	Delete(ctx context.Context, id string) error
}

type PGRouteRepository struct {
	db *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) RouteRepository {
	return &PGRouteRepository{db: db}
}

const routeColumns = `id, source, destination, departure_point, arrival_point, distance_km, stops, created_at, updated_at`

func (r *PGRouteRepository) Create(ctx context.Context, route *domain.Route) error {
	stops := route.Stops
	if stops == nil {
		stops = []string{}
	}
	err := r.db.QueryRow(ctx, `INSERT INTO routes (id, source, destination, departure_point, arrival_point, distance_km, stops)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		route.ID, route.Source, route.Destination, route.DeparturePoint, route.ArrivalPoint, route.DistanceKm, stops).
		Scan(&route.CreatedAt, &route.UpdatedAt)
	return mapError(err, "insert route")
}

func (r *PGRouteRepository) List(ctx context.Context) ([]domain.Route, error) {
	rows, err := r.db.Query(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY source, destination`)
	if err != nil {
		return nil, mapError(err, "list routes")
	}
	defer rows.Close()

	routes := make([]domain.Route, 0)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, mapError(err, "scan route")
		}
		routes = append(routes, *route)
	}
	return routes, rows.Err()
}

func (r *PGRouteRepository) GetByID(ctx context.Context, id string) (*domain.Route, error) {
	route, err := scanRoute(r.db.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err, "get route "+id)
	}
	return route, nil
}

func (r *PGRouteRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM routes WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "delete route")
	}
	if cmd.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "delete route "+id)
	}
	return nil
}

func scanRoute(row pgx.Row) (*domain.Route, error) {
	var rt domain.Route
	if err := row.Scan(&rt.ID, &rt.Source, &rt.Destination, &rt.DeparturePoint, &rt.ArrivalPoint, &rt.DistanceKm, &rt.Stops, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
		return nil, err
	}
	return &rt, nil
}

var _ RouteRepository = (*PGRouteRepository)(nil)
