package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPGStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewPGStore(pool)
	assert.NotNil(t, store.Routes)
	assert.NotNil(t, store.Vehicles)
	assert.NotNil(t, store.Schedules)
	assert.NotNil(t, store.Bookings)
	assert.NotNil(t, store.Support)
}

// testPool connects to TEST_DATABASE_URL and applies the schema.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func seedPG(t *testing.T, store *Store) *domain.Schedule {
	t.Helper()
	ctx := context.Background()

	route := &domain.Route{ID: uuid.NewString(), Source: "Pune", Destination: "Nashik"}
	require.NoError(t, store.Routes.Create(ctx, route))
	vehicle := &domain.Vehicle{ID: uuid.NewString(), BusNumber: "PG-" + uuid.NewString()[:8], OperatorName: "Neeta", Type: domain.VehicleTypeSleeper, TotalSeats: 40}
	require.NoError(t, store.Vehicles.Create(ctx, vehicle))

	departure := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	s := &domain.Schedule{ID: uuid.NewString(), VehicleID: vehicle.ID, RouteID: route.ID, DepartureTime: departure, ArrivalTime: departure.Add(5 * time.Hour), PriceCents: 45000}
	require.NoError(t, store.Schedules.Create(ctx, s))
	return s
}

func pgBooking(scheduleID string, seats ...string) *domain.Booking {
	return &domain.Booking{
		ID:             uuid.NewString(),
		UserID:         "pg-user",
		ScheduleID:     scheduleID,
		Seats:          seats,
		TotalCents:     int64(len(seats)) * 45000,
		Status:         domain.BookingStatusBooked,
		PassengerName:  "Ravi",
		PassengerPhone: "+919999999999",
		DeliveryMethod: domain.DeliveryWhatsApp,
		PaymentMethod:  domain.PaymentMethodUPI,
		PaymentID:      "PAY_UPI_1",
	}
}

func TestPGBookings_CommitCancel(t *testing.T) {
	store := NewPGStore(testPool(t))
	s := seedPG(t, store)
	ctx := context.Background()

	first := pgBooking(s.ID, "1A", "1B")
	require.NoError(t, store.Bookings.Commit(ctx, first))

	err := store.Bookings.Commit(ctx, pgBooking(s.ID, "1C", "1A"))
	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"1A"}, conflict.Seats)

	got, err := store.Schedules.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "1B"}, got.BookedSeats)
	require.NotNil(t, got.Route)
	assert.Equal(t, "Pune", got.Route.Source)

	cancelled, err := store.Bookings.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)

	_, err = store.Bookings.Cancel(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	got, err = store.Schedules.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.BookedSeats)
}

func TestPGBookings_SeatConflictNamesOnlyTakenSeats(t *testing.T) {
	pool := testPool(t)
	store := NewPGStore(pool)
	s := seedPG(t, store)
	ctx := context.Background()

	require.NoError(t, store.Bookings.Commit(ctx, pgBooking(s.ID, "7A", "7B")))

	// The conflict a lost seat insert reports.
	repo := &PGBookingRepository{db: pool}
	err := repo.seatConflict(ctx, pgBooking(s.ID, "7C", "7B", "7D", "7A"))
	var conflict *domain.SeatConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"7B", "7A"}, conflict.Seats)

	// Nothing held any more: every requested seat is reported.
	err = repo.seatConflict(ctx, pgBooking(s.ID, "8A", "8B"))
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"8A", "8B"}, conflict.Seats)
}

func TestPGBookings_ConcurrentCommits(t *testing.T) {
	store := NewPGStore(testPool(t))
	s := seedPG(t, store)
	ctx := context.Background()

	const workers = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Bookings.Commit(ctx, pgBooking(s.ID, "3C", "3D"))
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrConflict, fmt.Sprint(err))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
}
