package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
)

// writeError maps err to an HTTP status through its gRPC code, the same
// mapping the gRPC services use, and aborts the request.
func writeError(c *gin.Context, err error) {
	code := domain.StatusCode(err)
	status := runtime.HTTPStatusFromCode(code)
	if errors.Is(err, domain.ErrPaymentDeclined) {
		status = http.StatusPaymentRequired
	}

	body := gin.H{"error": err.Error(), "code": code.String()}
	if code == codes.Internal {
		loggerFrom(c).Error("request failed", zap.Error(err))
		body["error"] = "internal server error"
	}

	var conflict *domain.SeatConflictError
	if errors.As(err, &conflict) {
		body["seats"] = conflict.Seats
		if conflict.AfterPayment {
			body["payment_id"] = conflict.PaymentID
			body["void_required"] = true
		}
	}
	var invalid *domain.ValidationError
	if errors.As(err, &invalid) {
		body["field"] = invalid.Field
	}

	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, field string, err error) {
	writeError(c, domain.NewValidationError(field, err.Error()))
}
