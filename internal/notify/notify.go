package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/busbooking/config"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/kafka"
	"go.uber.org/zap"
)

type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSimulated Status = "simulated"
	StatusFailed    Status = "failed"
)

// Result describes one delivery attempt. Failures are reported here and never
// as an error to the caller.
type Result struct {
	Channel domain.DeliveryMethod
	Status  Status
	SID     string
	Err     error
}

func (r Result) OK() bool {
	return r.Status != StatusFailed
}

type Notifier interface {
	Send(ctx context.Context, channel domain.DeliveryMethod, to, message string) Result
}

// New returns a Twilio notifier when credentials are configured and a
// simulated one otherwise.
func New(cfg config.NotifierConfig, log *zap.Logger) Notifier {
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		return NewTwilio(cfg, log)
	}
	return NewSimulated(log)
}

func ConfirmationMessage(c kafka.Confirmation, trackingURLBase string) string {
	return fmt.Sprintf("Ticket confirmed for %s to %s. PNR: %s. Track live at: %s/%s",
		c.Source, c.Destination, c.PNR, strings.TrimRight(trackingURLBase, "/"), c.PNR)
}

// Deliver sends the confirmation over SMS and WhatsApp and logs each outcome.
func Deliver(ctx context.Context, n Notifier, c kafka.Confirmation, trackingURLBase string, log *zap.Logger) []Result {
	msg := ConfirmationMessage(c, trackingURLBase)
	results := make([]Result, 0, 2)
	for _, channel := range []domain.DeliveryMethod{domain.DeliverySMS, domain.DeliveryWhatsApp} {
		res := n.Send(ctx, channel, c.Phone, msg)
		res.Channel = channel
		if res.OK() {
			log.Info("confirmation sent",
				zap.String("pnr", c.PNR),
				zap.String("channel", string(channel)),
				zap.String("status", string(res.Status)),
				zap.String("sid", res.SID))
		} else {
			log.Warn("confirmation failed",
				zap.String("pnr", c.PNR),
				zap.String("channel", string(channel)),
				zap.Error(res.Err))
		}
		results = append(results, res)
	}
	return results
}
