package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	member = auth.Identity{UserID: "user-1", Role: auth.RoleMember}
	staff  = auth.Identity{UserID: "admin-1", Role: auth.RoleStaff}
)

func newTestContext(method, target string, body any, id *auth.Identity) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		req = req.WithContext(auth.WithIdentity(req.Context(), *id))
	}
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	body := `{"scheduleId":"sched-1","seats":["1A","1B"],"paymentMethod":"upi","transactionId":"UTR-77",` +
		`"passengerName":"Asha","passengerPhone":"+919800000000","deliveryMethod":"whatsapp"}`
	c, w := newTestContext(http.MethodPost, "/api/bookings", body, &member)

	input := booking.CreateBookingInput{
		ScheduleID:     "sched-1",
		Seats:          []string{"1A", "1B"},
		PaymentMethod:  domain.PaymentMethodUPI,
		TransactionID:  "UTR-77",
		PassengerName:  "Asha",
		PassengerPhone: "+919800000000",
		DeliveryMethod: domain.DeliveryWhatsApp,
	}
	created := &domain.Booking{
		ID:         "3f2a9c1e-0000-4000-8000-00000abc123f",
		UserID:     member.UserID,
		ScheduleID: "sched-1",
		Seats:      []string{"1A", "1B"},
		TotalCents: 100000,
		Status:     domain.BookingStatusBooked,
	}
	mockService.On("CreateBooking", mock.Anything, member, input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "BC123F", resp["pnr"])
	assert.Equal(t, "booked", resp["status"])
	assert.EqualValues(t, 100000, resp["totalAmount"])
	assert.Equal(t, "sched-1", resp["schedule_id"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createMinimalBody(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPost, "/api/bookings",
		`{"scheduleId":"s1","seats":["1A"],"paymentMethod":"card","passengerName":"A","passengerPhone":"1"}`, &member)

	input := booking.CreateBookingInput{
		ScheduleID:     "s1",
		Seats:          []string{"1A"},
		PaymentMethod:  domain.PaymentMethodCard,
		PassengerName:  "A",
		PassengerPhone: "1",
	}
	mockService.On("CreateBooking", mock.Anything, member, input).
		Return(&domain.Booking{ID: "b-1", ScheduleID: "s1", Seats: []string{"1A"}, TotalCents: 50000}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 50000, decodeBody(t, w)["totalAmount"])
	mockService.AssertExpectations(t)
}

func TestBookingHandler_createErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "validation",
			err:        domain.NewValidationError("seats", "must not be empty"),
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "seats", body["field"])
			},
		},
		{
			name:       "schedule not found",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "seats taken",
			err:        &domain.SeatConflictError{Seats: []string{"1B"}},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, []any{"1B"}, body["seats"])
				assert.NotContains(t, body, "void_required")
			},
		},
		{
			name:       "seats taken after payment",
			err:        &domain.SeatConflictError{Seats: []string{"1B"}, AfterPayment: true, PaymentID: "PAY_UPI_1"},
			wantStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "PAY_UPI_1", body["payment_id"])
				assert.Equal(t, true, body["void_required"])
			},
		},
		{
			name:       "payment declined",
			err:        domain.ErrPaymentDeclined,
			wantStatus: http.StatusPaymentRequired,
		},
		{
			name:       "store failure hides details",
			err:        errors.New("connection reset by peer"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "internal server error", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := newTestContext(http.MethodPost, "/api/bookings", booking.CreateBookingInput{ScheduleID: "sched-1"}, &member)
			mockService.On("CreateBooking", mock.Anything, member, mock.Anything).Return(nil, tt.err)

			handler.create(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				tt.check(t, decodeBody(t, w))
			}
		})
	}
}

func TestBookingHandler_createBadJSON(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newTestContext(http.MethodPost, "/api/bookings", "{not json", &member)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodGet, "/api/bookings/b-1", nil, &member)
	c.Params = gin.Params{{Key: "id", Value: "b-1"}}
	details := &domain.BookingDetails{
		Booking:  domain.Booking{ID: "booking-xyz789", Status: domain.BookingStatusBooked},
		Schedule: &domain.Schedule{ID: "sched-1", PriceCents: 50000},
	}
	mockService.On("GetBooking", mock.Anything, member, "b-1").Return(details, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "XYZ789", body["pnr"])
	require.Contains(t, body, "schedule")
	assert.Equal(t, "sched-1", body["schedule"].(map[string]any)["id"])

	c, w = newTestContext(http.MethodGet, "/api/bookings/other", nil, &member)
	c.Params = gin.Params{{Key: "id", Value: "other"}}
	mockService.On("GetBooking", mock.Anything, member, "other").Return(nil, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_listMine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := newTestContext(http.MethodGet, "/api/bookings/mybookings", nil, &member)

	mockService.On("ListBookings", mock.Anything, member).Return([]domain.BookingDetails{
		{Booking: domain.Booking{ID: "aaaaaa111111"}},
		{Booking: domain.Booking{ID: "bbbbbb222222"}},
	}, nil)

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var body []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "111111", body[0]["pnr"])
	assert.Nil(t, body[0]["schedule"])
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newTestContext(http.MethodPut, "/api/bookings/b-1/cancel", nil, &staff)
	c.Params = gin.Params{{Key: "id", Value: "b-1"}}
	mockService.On("CancelBooking", mock.Anything, staff, "b-1").
		Return(&domain.Booking{ID: "b-1", Status: domain.BookingStatusCancelled}, nil).Once()

	handler.cancel(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancelled", decodeBody(t, w)["status"])

	c, w = newTestContext(http.MethodPut, "/api/bookings/b-1/cancel", nil, &staff)
	c.Params = gin.Params{{Key: "id", Value: "b-1"}}
	mockService.On("CancelBooking", mock.Anything, staff, "b-1").Return(nil, domain.ErrAlreadyCancelled).Once()

	handler.cancel(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}
