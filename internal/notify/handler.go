package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/busbooking/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConfirmationHandler delivers confirmations read from the notifications
// topic. Undecodable messages are reported as errors and skipped by the consumer.
func ConfirmationHandler(n Notifier, trackingURLBase string, log *zap.Logger) kafka.Handler {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		c, err := kafka.DecodeConfirmation(msg.Value)
		if err != nil {
			return fmt.Errorf("offset %d: %w", msg.Offset, err)
		}
		Deliver(ctx, n, c, trackingURLBase, log)
		return nil
	}
}
