package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/busbooking/api"
	"github.com/Domenick1991/busbooking/config"
	bookingsapi "github.com/Domenick1991/busbooking/internal/api/bookings_service_api"
	"github.com/Domenick1991/busbooking/internal/api/rpc"
	schedulesapi "github.com/Domenick1991/busbooking/internal/api/schedules_service_api"
	"github.com/Domenick1991/busbooking/internal/service/booking"
	"github.com/Domenick1991/busbooking/internal/service/catalog"
	"github.com/Domenick1991/busbooking/internal/service/support"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

type Services struct {
	Bookings booking.BookingUseCase
	Catalog  catalog.CatalogUseCase
	Support  support.SupportUseCase
	Tokens   api.TokenValidator
	Health   []api.HealthCheck
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or a
// server fails. Both servers are shut down gracefully before it returns.
func Run(ctx context.Context, cfg *config.Config, svcs Services, log *zap.Logger) error {
	s := newServers(cfg, svcs, log)

	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("grpc server started", zap.String("address", grpcLis.Addr().String()))
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			return fmt.Errorf("serve gRPC: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("http server started", zap.String("address", httpLis.Addr().String()))
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newServers(cfg *config.Config, svcs Services, log *zap.Logger) *Servers {
	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		rpc.LoggingInterceptor(log),
		rpc.AuthInterceptor(svcs.Tokens, schedulesapi.ListSchedulesMethod, schedulesapi.GetScheduleMethod),
	))
	bookingsapi.RegisterBookingsServiceServer(grpcSrv, bookingsapi.NewServer(svcs.Bookings))
	schedulesapi.RegisterSchedulesServiceServer(grpcSrv, schedulesapi.NewServer(svcs.Catalog))

	router := api.NewRouter(cfg.HTTP, api.RouterDeps{
		Bookings: svcs.Bookings,
		Catalog:  svcs.Catalog,
		Support:  svcs.Support,
		Tokens:   svcs.Tokens,
		Health:   svcs.Health,
	}, log)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}
}
