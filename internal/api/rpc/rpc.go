// Package rpc holds the plumbing shared by the gRPC services: method
// descriptors over structpb messages, error translation and interceptors.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrorDomain is the errdetails.ErrorInfo domain of every service error.
const ErrorDomain = "busbooking"

// Unary builds a method descriptor for fn, usually a method expression on
// the service interface. Errors returned by fn are translated with Error.
func Unary[S any](service, method string, fn func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			call := func(ctx context.Context, req any) (any, error) {
				out, err := fn(srv.(S), ctx, req.(*structpb.Struct))
				if err != nil {
					return nil, Error(err)
				}
				return out, nil
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, call)
		},
	}
}

// Encode converts v to a Struct through its JSON form.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}
	return out, nil
}

// Decode fills v from the JSON form of in.
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	raw, err := protojson.Marshal(in)
	if err != nil {
		return domain.NewValidationError("request", err.Error())
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.NewValidationError("request", err.Error())
	}
	return nil
}

// Error converts a domain error to a gRPC status carrying an ErrorInfo.
// Errors that already are statuses pass through.
func Error(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := domain.StatusCode(err)
	if code == codes.Internal {
		return &internalError{cause: err}
	}

	info := &errdetails.ErrorInfo{Domain: ErrorDomain, Reason: reason(err), Metadata: map[string]string{}}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		info.Metadata["field"] = invalid.Field
	}
	var conflict *domain.SeatConflictError
	if errors.As(err, &conflict) {
		info.Metadata["seats"] = strings.Join(conflict.Seats, ",")
		if conflict.AfterPayment {
			info.Metadata["payment_id"] = conflict.PaymentID
		}
	}

	st, detailErr := status.New(code, err.Error()).WithDetails(info)
	if detailErr != nil {
		return status.Error(code, err.Error())
	}
	return st.Err()
}

// internalError hides its cause from the client but keeps it for logging.
type internalError struct {
	cause error
}

func (e *internalError) Error() string { return "internal error: " + e.cause.Error() }

func (e *internalError) Unwrap() error { return e.cause }

func (e *internalError) GRPCStatus() *status.Status {
	return status.New(codes.Internal, "internal error")
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "VALIDATION_FAILED"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrPaymentVoidRequired):
		return "PAYMENT_VOID_REQUIRED"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return "ALREADY_CANCELLED"
	case errors.Is(err, domain.ErrConflict):
		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			return "SEATS_TAKEN"
		}
		return "CONFLICT"
	case errors.Is(err, domain.ErrPaymentDeclined):
		return "PAYMENT_DECLINED"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	}
	return "UNKNOWN"
}

// ErrorInfo extracts the ErrorInfo detail from a status error, if any.
func ErrorInfo(err error) (*errdetails.ErrorInfo, bool) {
	st, ok := status.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info, true
		}
	}
	return nil, false
}

type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// AuthInterceptor reads a bearer token from the "authorization" metadata and
// stores the identity on the context. Methods listed in public may be called
// without one.
func AuthInterceptor(tokens TokenValidator, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]struct{}, len(public))
	for _, m := range public {
		open[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		token := bearerToken(ctx)
		if token != "" {
			id, err := tokens.Validate(token)
			if err != nil {
				return nil, Error(domain.ErrUnauthenticated)
			}
			return handler(auth.WithIdentity(ctx, id), req)
		}
		if _, ok := open[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		return nil, Error(domain.ErrUnauthenticated)
	}
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get("authorization") {
		if token, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// LoggingInterceptor logs every call with its status code.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}
		if code == codes.Internal {
			log.Error("grpc call", append(fields, zap.Error(err))...)
		} else {
			log.Info("grpc call", fields...)
		}
		return resp, err
	}
}
