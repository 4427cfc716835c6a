package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Commit re-validates the requested seats against the ledger and stores
	// the booking together with its ledger rows. Taken seats are reported
	// as *domain.SeatConflictError and nothing is written.
	Commit(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// Cancel releases the booking's seats and marks it cancelled.
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BookingDetails, error)
	ListAll(ctx context.Context) ([]domain.BookingDetails, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, schedule_id, seats, total_cents, status, passenger_name, passenger_phone,
	delivery_method, payment_method, payment_id, created_at, updated_at`

func (r *PGBookingRepository) Commit(ctx context.Context, b *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback(ctx)

	// Commits on the same schedule serialize on this row lock.
	var scheduleID string
	if err := tx.QueryRow(ctx, `SELECT id FROM schedules WHERE id=$1 FOR UPDATE`, b.ScheduleID).Scan(&scheduleID); err != nil {
		return mapError(err, "lock schedule "+b.ScheduleID)
	}

	taken, err := takenSeats(ctx, tx, b.ScheduleID, b.Seats)
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return &domain.SeatConflictError{Seats: taken}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, schedule_id, seats, total_cents, status, passenger_name,
			passenger_phone, delivery_method, payment_method, payment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.ScheduleID, b.Seats, b.TotalCents, b.Status, b.PassengerName,
		b.PassengerPhone, b.DeliveryMethod, b.PaymentMethod, b.PaymentID).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapError(err, "insert booking")
	}

	if _, err := tx.Exec(ctx, `INSERT INTO schedule_seats (schedule_id, seat_label, booking_id)
		SELECT $1, unnest($2::text[]), $3`, b.ScheduleID, b.Seats, b.ID); err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback(ctx)
			return r.seatConflict(ctx, b)
		}
		return mapError(err, "insert seats")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

type seatQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// takenSeats returns the requested seats already in the ledger, in request order.
func takenSeats(ctx context.Context, q seatQuerier, scheduleID string, seats []string) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT seat_label FROM schedule_seats WHERE schedule_id=$1 AND seat_label = ANY($2)`, scheduleID, seats)
	if err != nil {
		return nil, mapError(err, "check seats")
	}
	held, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err, "check seats")
	}
	ledger := domain.Schedule{BookedSeats: held}
	return ledger.Overlap(seats), nil
}

// seatConflict builds the error for a seat insert that lost a race. The
// failed transaction is gone, so the ledger is read again outside it. When
// the winner already released its seats every requested seat is reported.
func (r *PGBookingRepository) seatConflict(ctx context.Context, b *domain.Booking) error {
	taken, err := takenSeats(ctx, r.db, b.ScheduleID, b.Seats)
	if err != nil || len(taken) == 0 {
		taken = b.Seats
	}
	return &domain.SeatConflictError{Seats: taken}
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err, "get booking "+id)
	}
	return b, nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "get booking "+id)
	}
	if b.Status == domain.BookingStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_seats WHERE booking_id=$1`, id); err != nil {
		return nil, mapError(err, "release seats")
	}
	if err := tx.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		id, domain.BookingStatusCancelled).Scan(&b.UpdatedAt); err != nil {
		return nil, mapError(err, "cancel booking "+id)
	}
	b.Status = domain.BookingStatusCancelled

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BookingDetails, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]domain.BookingDetails, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.BookingDetails, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list bookings")
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err, "scan booking")
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list bookings")
	}

	ids := make([]string, 0, len(bookings))
	seen := make(map[string]struct{})
	for _, b := range bookings {
		if _, ok := seen[b.ScheduleID]; !ok {
			seen[b.ScheduleID] = struct{}{}
			ids = append(ids, b.ScheduleID)
		}
	}
	schedules, err := schedulesByID(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	details := make([]domain.BookingDetails, 0, len(bookings))
	for _, b := range bookings {
		details = append(details, domain.BookingDetails{Booking: b, Schedule: schedules[b.ScheduleID]})
	}
	return details, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.ScheduleID, &b.Seats, &b.TotalCents, &b.Status, &b.PassengerName,
		&b.PassengerPhone, &b.DeliveryMethod, &b.PaymentMethod, &b.PaymentID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
