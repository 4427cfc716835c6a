package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/busbooking/internal/kafka"
	"github.com/Domenick1991/busbooking/internal/logger"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const (
	confirmationsTopic = "notifications.confirmations"
	deliveryTimeout    = 30 * time.Second
)

// Dispatcher hands confirmations to a background subscriber so callers never
// wait on the SMS provider.
type Dispatcher struct {
	pubSub          *gochannel.GoChannel
	notifier        Notifier
	trackingURLBase string
	log             *zap.Logger
	wg              sync.WaitGroup
}

func NewDispatcher(n Notifier, trackingURLBase string, log *zap.Logger) (*Dispatcher, error) {
	log = log.Named("dispatcher")
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger.NewWatermillAdapter(log))

	messages, err := pubSub.Subscribe(context.Background(), confirmationsTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", confirmationsTopic, err)
	}

	d := &Dispatcher{
		pubSub:          pubSub,
		notifier:        n,
		trackingURLBase: trackingURLBase,
		log:             log,
	}
	d.wg.Add(1)
	go d.run(messages)
	return d, nil
}

// Dispatch enqueues a confirmation and returns without waiting for delivery.
func (d *Dispatcher) Dispatch(_ context.Context, c kafka.Confirmation) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := d.pubSub.Publish(confirmationsTopic, msg); err != nil {
		return fmt.Errorf("publish confirmation: %w", err)
	}
	return nil
}

func (d *Dispatcher) run(messages <-chan *message.Message) {
	defer d.wg.Done()
	for msg := range messages {
		c, err := kafka.DecodeConfirmation(msg.Payload)
		if err != nil {
			d.log.Error("drop confirmation", zap.String("message_uuid", msg.UUID), zap.Error(err))
			msg.Ack()
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		Deliver(ctx, d.notifier, c, d.trackingURLBase, d.log)
		cancel()
		msg.Ack()
	}
}

// Close stops the subscriber. Confirmations not yet picked up are dropped.
func (d *Dispatcher) Close() error {
	err := d.pubSub.Close()
	d.wg.Wait()
	return err
}
