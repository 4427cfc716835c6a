package bookings_service_api

import (
	"context"

	"github.com/Domenick1991/busbooking/internal/api/rpc"
	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "busbooking.bookings.v1.BookingsService"

// BookingsServiceServer is the server API for the bookings service. Requests
// and responses are JSON-shaped structs using the REST field names.
type BookingsServiceServer interface {
	CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListBookings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "CreateBooking", BookingsServiceServer.CreateBooking),
		rpc.Unary(ServiceName, "CancelBooking", BookingsServiceServer.CancelBooking),
		rpc.Unary(ServiceName, "ListBookings", BookingsServiceServer.ListBookings),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "busbooking/bookings/v1/bookings_service.proto",
}

func RegisterBookingsServiceServer(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server implements BookingsServiceServer on top of the booking use case.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

type bookingView struct {
	domain.Booking
	PNR         string `json:"pnr"`
	TotalAmount int64  `json:"totalAmount"`
}

type detailsView struct {
	domain.BookingDetails
	PNR         string `json:"pnr"`
	TotalAmount int64  `json:"totalAmount"`
}

func newBookingView(b *domain.Booking) bookingView {
	return bookingView{Booking: *b, PNR: b.PNR(), TotalAmount: b.TotalCents}
}

type idRequest struct {
	ID string `json:"id"`
}

type listRequest struct {
	All bool `json:"all"`
}

func (s *Server) CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var input booking.CreateBookingInput
	if err := rpc.Decode(in, &input); err != nil {
		return nil, err
	}
	created, err := s.bookings.CreateBooking(ctx, caller(ctx), input)
	if err != nil {
		return nil, err
	}
	return rpc.Encode(newBookingView(created))
}

func (s *Server) CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req idRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	cancelled, err := s.bookings.CancelBooking(ctx, caller(ctx), req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.Encode(newBookingView(cancelled))
}

// ListBookings returns the caller's bookings, or every booking when "all"
// is set and the caller is staff.
func (s *Server) ListBookings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}

	var (
		list []domain.BookingDetails
		err  error
	)
	if req.All {
		list, err = s.bookings.ListAllBookings(ctx, caller(ctx))
	} else {
		list, err = s.bookings.ListBookings(ctx, caller(ctx))
	}
	if err != nil {
		return nil, err
	}

	views := make([]detailsView, 0, len(list))
	for _, d := range list {
		views = append(views, detailsView{BookingDetails: d, PNR: d.PNR(), TotalAmount: d.TotalCents})
	}
	return rpc.Encode(map[string]any{"bookings": views})
}

func caller(ctx context.Context) auth.Identity {
	id, _ := auth.FromContext(ctx)
	return id
}

var _ BookingsServiceServer = (*Server)(nil)
