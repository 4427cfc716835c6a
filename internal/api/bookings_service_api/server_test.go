package bookings_service_api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/busbooking/internal/api/rpc"
	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/payment"
	"github.com/Domenick1991/busbooking/internal/repository"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	member = auth.Identity{UserID: "user-1", Role: auth.RoleMember}
	staff  = auth.Identity{UserID: "admin-1", Role: auth.RoleStaff}
)

type harness struct {
	conn   *grpc.ClientConn
	tokens *auth.TokenService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store := repository.NewMemoryStore()
	require.NoError(t, store.Routes.Create(ctx, &domain.Route{ID: "route-1", Source: "Pune", Destination: "Goa"}))
	require.NoError(t, store.Vehicles.Create(ctx, &domain.Vehicle{ID: "bus-1", BusNumber: "MH12-0001", Type: domain.VehicleTypeSleeper, TotalSeats: 40}))
	departure := time.Date(2026, 12, 20, 21, 0, 0, 0, time.UTC)
	require.NoError(t, store.Schedules.Create(ctx, &domain.Schedule{
		ID: "sched-1", VehicleID: "bus-1", RouteID: "route-1",
		DepartureTime: departure, ArrivalTime: departure.Add(10 * time.Hour), PriceCents: 80000,
	}))

	svc := booking.NewBookingService(store.Bookings, store.Schedules, &payment.Fake{Default: payment.Accepted})
	t.Cleanup(svc.Close)

	tokens := auth.NewTokenService("grpc-secret", time.Hour)
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(rpc.AuthInterceptor(tokens)))
	RegisterBookingsServiceServer(srv, NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &harness{conn: conn, tokens: tokens}
}

func (h *harness) call(t *testing.T, id *auth.Identity, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	if id != nil {
		token, err := h.tokens.Issue(*id)
		require.NoError(t, err)
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)
	out := new(structpb.Struct)
	err = h.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out)
	return out, err
}

func bookingRequest(seats ...any) map[string]any {
	return map[string]any{
		"scheduleId":     "sched-1",
		"seats":          seats,
		"paymentMethod":  "card",
		"passengerName":  "Rohan",
		"passengerPhone": "+919811111111",
	}
}

func TestServer_CreateBooking(t *testing.T) {
	h := newHarness(t)

	out, err := h.call(t, &member, "CreateBooking", bookingRequest("1A", "1B"))
	require.NoError(t, err)
	fields := out.GetFields()
	assert.Equal(t, "booked", fields["status"].GetStringValue())
	assert.Equal(t, float64(160000), fields["totalAmount"].GetNumberValue())
	assert.Len(t, fields["pnr"].GetStringValue(), 6)
	assert.Equal(t, member.UserID, fields["user_id"].GetStringValue())

	_, err = h.call(t, &member, "CreateBooking", bookingRequest("1B", "1C"))
	require.Error(t, err)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	info, ok := rpc.ErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, "SEATS_TAKEN", info.GetReason())
	assert.Equal(t, "1B", info.GetMetadata()["seats"])
}

func TestServer_CreateBookingValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.call(t, &member, "CreateBooking", bookingRequest())
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	info, ok := rpc.ErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, "seats", info.GetMetadata()["field"])
}

func TestServer_RequiresToken(t *testing.T) {
	h := newHarness(t)

	_, err := h.call(t, nil, "ListBookings", map[string]any{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestServer_CancelAndList(t *testing.T) {
	h := newHarness(t)

	created, err := h.call(t, &member, "CreateBooking", bookingRequest("2A"))
	require.NoError(t, err)
	id := created.GetFields()["id"].GetStringValue()

	_, err = h.call(t, &member, "CancelBooking", map[string]any{"id": id})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	cancelled, err := h.call(t, &staff, "CancelBooking", map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.GetFields()["status"].GetStringValue())

	_, err = h.call(t, &staff, "CancelBooking", map[string]any{"id": id})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
	info, ok := rpc.ErrorInfo(err)
	require.True(t, ok)
	assert.Equal(t, "ALREADY_CANCELLED", info.GetReason())

	mine, err := h.call(t, &member, "ListBookings", map[string]any{})
	require.NoError(t, err)
	list := mine.GetFields()["bookings"].GetListValue().GetValues()
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].GetStructValue().GetFields()["id"].GetStringValue())

	_, err = h.call(t, &member, "ListBookings", map[string]any{"all": true})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	all, err := h.call(t, &staff, "ListBookings", map[string]any{"all": true})
	require.NoError(t, err)
	assert.Len(t, all.GetFields()["bookings"].GetListValue().GetValues(), 1)
}
