package schedules_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/busbooking/internal/api/rpc"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "busbooking.schedules.v1.SchedulesService"

// Full method names, for interceptors that treat schedule search as public.
const (
	ListSchedulesMethod = "/" + ServiceName + "/ListSchedules"
	GetScheduleMethod   = "/" + ServiceName + "/GetSchedule"
)

type SchedulesServiceServer interface {
	ListSchedules(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Unary(ServiceName, "ListSchedules", SchedulesServiceServer.ListSchedules),
		rpc.Unary(ServiceName, "GetSchedule", SchedulesServiceServer.GetSchedule),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "busbooking/schedules/v1/schedules_service.proto",
}

func RegisterSchedulesServiceServer(s grpc.ServiceRegistrar, srv SchedulesServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	catalog catalog.CatalogUseCase
}

func NewServer(catalog catalog.CatalogUseCase) *Server {
	return &Server{catalog: catalog}
}

type listRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
}

type getRequest struct {
	ID string `json:"id"`
}

func (s *Server) ListSchedules(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}

	filter := domain.ScheduleFilter{From: req.From, To: req.To}
	if req.Date != "" {
		day, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, domain.NewValidationError("date", "must be formatted as YYYY-MM-DD")
		}
		filter.Date = &day
	}

	schedules, err := s.catalog.ListSchedules(ctx, filter)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	return rpc.Encode(map[string]any{"schedules": schedules})
}

func (s *Server) GetSchedule(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getRequest
	if err := rpc.Decode(in, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	schedule, err := s.catalog.GetSchedule(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return rpc.Encode(schedule)
}

var _ SchedulesServiceServer = (*Server)(nil)
