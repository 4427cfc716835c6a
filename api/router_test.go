package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type routerFixture struct {
	router   *gin.Engine
	bookings *MockBookingUseCase
	catalog  *MockCatalogUseCase
	support  *MockSupportUseCase
	tokens   *auth.TokenService
}

func newRouterFixture(health ...HealthCheck) *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{
		bookings: &MockBookingUseCase{},
		catalog:  &MockCatalogUseCase{},
		support:  &MockSupportUseCase{},
		tokens:   auth.NewTokenService("test-secret", time.Hour),
	}
	f.router = NewRouter(config.HTTPConfig{}, RouterDeps{
		Bookings: f.bookings,
		Catalog:  f.catalog,
		Support:  f.support,
		Tokens:   f.tokens,
		Health:   health,
	}, zap.NewNop())
	return f
}

func (f *routerFixture) do(t *testing.T, method, target, body string, id *auth.Identity) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if id != nil {
		token, err := f.tokens.Issue(*id)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRouter_bookingsRequireToken(t *testing.T) {
	f := newRouterFixture()

	w := f.do(t, http.MethodGet, "/api/bookings/mybookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings/mybookings", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.bookings.On("ListBookings", mock.Anything, member).Return([]domain.BookingDetails{}, nil)
	w = f.do(t, http.MethodGet, "/api/bookings/mybookings", "", &member)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	f.bookings.AssertExpectations(t)
}

func TestRouter_staffOnlyEndpoints(t *testing.T) {
	f := newRouterFixture()

	cases := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/api/bookings", ""},
		{http.MethodPut, "/api/bookings/b-1/cancel", ""},
		{http.MethodPost, "/api/routes", `{"source":"Delhi","destination":"Jaipur"}`},
		{http.MethodDelete, "/api/buses/bus-1", ""},
		{http.MethodPut, "/api/schedules/sched-1/price", `{"price_cents":100}`},
		{http.MethodGet, "/api/support", ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			w := f.do(t, tc.method, tc.target, tc.body, &member)
			assert.Equal(t, http.StatusForbidden, w.Code)

			w = f.do(t, tc.method, tc.target, tc.body, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	f.bookings.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
	f.catalog.AssertNotCalled(t, "CreateRoute", mock.Anything, mock.Anything)
}

func TestRouter_staffCancelAndDelete(t *testing.T) {
	f := newRouterFixture()

	f.bookings.On("CancelBooking", mock.Anything, staff, "b-1").
		Return(&domain.Booking{ID: "b-1", Status: domain.BookingStatusCancelled}, nil)
	w := f.do(t, http.MethodPut, "/api/bookings/b-1/cancel", "", &staff)
	assert.Equal(t, http.StatusOK, w.Code)

	f.catalog.On("DeleteSchedule", mock.Anything, "sched-1").Return(nil)
	w = f.do(t, http.MethodDelete, "/api/schedules/sched-1", "", &staff)
	assert.Equal(t, http.StatusNoContent, w.Code)

	f.catalog.On("DeleteRoute", mock.Anything, "missing").Return(domain.ErrNotFound)
	w = f.do(t, http.MethodDelete, "/api/routes/missing", "", &staff)
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.bookings.AssertExpectations(t)
	f.catalog.AssertExpectations(t)
}

func TestRouter_publicCatalog(t *testing.T) {
	f := newRouterFixture()

	f.catalog.On("ListSchedules", mock.Anything, domain.ScheduleFilter{From: "Delhi"}).Return([]domain.Schedule{}, nil)
	f.catalog.On("ListRoutes", mock.Anything).Return([]domain.Route{{ID: "route-1"}}, nil)
	f.catalog.On("GetVehicle", mock.Anything, "bus-1").Return(&domain.Vehicle{ID: "bus-1"}, nil)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/schedules?from=Delhi", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/routes", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/buses/bus-1", "", nil).Code)
	f.catalog.AssertExpectations(t)
}

func TestRouter_requestID(t *testing.T) {
	f := newRouterFixture()

	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

func TestRouter_healthz(t *testing.T) {
	healthy := HealthCheck{Name: "postgres", Check: func(context.Context) error { return nil }}
	f := newRouterFixture(healthy)

	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["postgres"])

	broken := HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }}
	f = newRouterFixture(healthy, broken)

	w = f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "dial tcp: refused", body["redis"])
	assert.Equal(t, "ok", body["postgres"])
}
