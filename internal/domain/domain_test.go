package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestSchedule_SeatLedger(t *testing.T) {
	s := &Schedule{BookedSeats: []string{"1A"}}

	assert.False(t, s.IsAvailable([]string{"1A", "2A"}))
	assert.Equal(t, []string{"1A"}, s.Overlap([]string{"1A", "2A"}))
	assert.True(t, s.IsAvailable([]string{"2A", "2B"}))
	assert.Empty(t, s.Overlap(nil))

	s.Reserve([]string{"2A", "2B"})
	assert.ElementsMatch(t, []string{"1A", "2A", "2B"}, s.BookedSeats)

	s.Release([]string{"2A", "9Z"})
	assert.ElementsMatch(t, []string{"1A", "2B"}, s.BookedSeats)
}

func TestBooking_PNR(t *testing.T) {
	b := &Booking{ID: "6f1c2d3e-aaaa-bbbb-cccc-0123456789ab"}
	assert.Equal(t, "6789AB", b.PNR())

	short := &Booking{ID: "abc"}
	assert.Equal(t, "ABC", short.PNR())
}

func TestVehicle_SeatLabels(t *testing.T) {
	v := &Vehicle{TotalSeats: 6}
	assert.Equal(t, []string{"1A", "1B", "1C", "1D", "2A", "2B"}, v.SeatLabels())

	empty := &Vehicle{}
	labels := empty.SeatLabels()
	assert.Len(t, labels, DefaultGridSeats)
	assert.Equal(t, "10D", labels[len(labels)-1])

	custom := &Vehicle{Layout: []string{"L1", "L2"}, TotalSeats: 40}
	assert.Equal(t, []string{"L1", "L2"}, custom.SeatLabels())
	assert.Equal(t, []string{"1A"}, custom.UnknownSeats([]string{"L1", "1A"}))
}

func TestEnums(t *testing.T) {
	assert.True(t, PaymentMethodUPI.Valid())
	assert.False(t, PaymentMethod("cash").Valid())
	assert.True(t, DeliveryWhatsApp.Valid())
	assert.False(t, DeliveryMethod("email").Valid())
	assert.True(t, VehicleTypeNonAC.Valid())
	assert.False(t, VehicleType("Boat").Valid())
	assert.True(t, TicketStatusInProgress.Valid())
	assert.True(t, TicketPriorityUrgent.Valid())
}

func TestErrors_Kinds(t *testing.T) {
	conflict := &SeatConflictError{Seats: []string{"1A", "1B"}}
	assert.True(t, errors.Is(conflict, ErrConflict))
	assert.False(t, errors.Is(conflict, ErrPaymentVoidRequired))
	assert.Contains(t, conflict.Error(), "1A, 1B")

	late := &SeatConflictError{Seats: []string{"1A"}, AfterPayment: true, PaymentID: "PAY_UPI_1"}
	assert.True(t, errors.Is(late, ErrConflict))
	assert.True(t, errors.Is(late, ErrPaymentVoidRequired))
	assert.Contains(t, late.Error(), "PAY_UPI_1")

	assert.True(t, errors.Is(ErrAlreadyCancelled, ErrConflict))
	assert.True(t, errors.Is(NewValidationError("seats", "required"), ErrValidation))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"validation", NewValidationError("passenger_name", "required"), codes.InvalidArgument},
		{"not found wrapped", fmt.Errorf("get schedule: %w", ErrNotFound), codes.NotFound},
		{"conflict", &SeatConflictError{Seats: []string{"1A"}}, codes.AlreadyExists},
		{"conflict after payment", &SeatConflictError{Seats: []string{"1A"}, AfterPayment: true}, codes.Aborted},
		{"already cancelled", ErrAlreadyCancelled, codes.AlreadyExists},
		{"payment declined", ErrPaymentDeclined, codes.FailedPrecondition},
		{"forbidden", ErrForbidden, codes.PermissionDenied},
		{"unauthenticated", ErrUnauthenticated, codes.Unauthenticated},
		{"internal", errors.New("connection refused"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
