package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id"`
	PNR        string    `json:"pnr"`
	UserID     string    `json:"user_id"`
	ScheduleID string    `json:"schedule_id"`
	Seats      []string  `json:"seats"`
	TotalCents int64     `json:"total_cents"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		PNR:        b.PNR(),
		UserID:     b.UserID,
		ScheduleID: b.ScheduleID,
		Seats:      b.Seats,
		TotalCents: b.TotalCents,
		Status:     string(b.Status),
		OccurredAt: time.Now().UTC(),
	}
}

// Confirmation asks the notification worker to deliver a ticket confirmation.
type Confirmation struct {
	PNR         string `json:"pnr"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Phone       string `json:"phone"`
}

func DecodeConfirmation(data []byte) (Confirmation, error) {
	var c Confirmation
	if err := json.Unmarshal(data, &c); err != nil {
		return Confirmation{}, fmt.Errorf("decode confirmation: %w", err)
	}
	if c.PNR == "" || c.Phone == "" {
		return Confirmation{}, fmt.Errorf("decode confirmation: missing pnr or phone")
	}
	return c, nil
}
