package notify

import (
	"context"
	"strings"

	"github.com/Domenick1991/busbooking/internal/domain"
	"go.uber.org/zap"
)

// Simulated logs messages instead of sending them.
type Simulated struct {
	log *zap.Logger
}

func NewSimulated(log *zap.Logger) *Simulated {
	return &Simulated{log: log.Named("notify")}
}

func (s *Simulated) Send(_ context.Context, channel domain.DeliveryMethod, to, message string) Result {
	s.log.Info("simulated "+strings.ToLower(string(channel)),
		zap.String("to", to),
		zap.String("message", message))
	return Result{Channel: channel, Status: StatusSimulated}
}

var _ Notifier = (*Simulated)(nil)
