package repository

import (
	"context"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	List(ctx context.Context) ([]domain.Vehicle, error)
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id string) error
}

type PGVehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

const vehicleColumns = `id, bus_number, operator_name, type, total_seats, layout, created_at, updated_at`

func (r *PGVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `INSERT INTO vehicles (id, bus_number, operator_name, type, total_seats, layout)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		v.ID, v.BusNumber, v.OperatorName, v.Type, v.TotalSeats, layoutOrEmpty(v.Layout)).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	return mapError(err, "insert vehicle")
}

func (r *PGVehicleRepository) List(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY bus_number`)
	if err != nil {
		return nil, mapError(err, "list vehicles")
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, mapError(err, "scan vehicle")
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err, "get vehicle "+id)
	}
	return v, nil
}

func (r *PGVehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `UPDATE vehicles
		SET bus_number=$2, operator_name=$3, type=$4, total_seats=$5, layout=$6, updated_at=now()
		WHERE id=$1
		RETURNING created_at, updated_at`,
		v.ID, v.BusNumber, v.OperatorName, v.Type, v.TotalSeats, layoutOrEmpty(v.Layout)).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	return mapError(err, "update vehicle "+v.ID)
}

func (r *PGVehicleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM vehicles WHERE id=$1`, id)
	if err != nil {
		return mapError(err, "delete vehicle")
	}
	if cmd.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "delete vehicle "+id)
	}
	return nil
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.BusNumber, &v.OperatorName, &v.Type, &v.TotalSeats, &v.Layout, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func layoutOrEmpty(layout []string) []string {
	if layout == nil {
		return []string{}
	}
	return layout
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
