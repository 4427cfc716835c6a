package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusBooked    BookingStatus = "booked"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliverySMS      DeliveryMethod = "sms"
	DeliveryWhatsApp DeliveryMethod = "whatsapp"
)

func (d DeliveryMethod) Valid() bool {
	return d == DeliverySMS || d == DeliveryWhatsApp
}

type Booking struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	ScheduleID     string         `json:"schedule_id"`
	Seats          []string       `json:"seats"`
	TotalCents     int64          `json:"total_cents"`
	Status         BookingStatus  `json:"status"`
	PassengerName  string         `json:"passenger_name"`
	PassengerPhone string         `json:"passenger_phone"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	PaymentMethod  PaymentMethod  `json:"payment_method"`
	PaymentID      string         `json:"payment_id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// PNR is the passenger-facing confirmation code: the last six characters
// of the booking id, uppercased.
func (b *Booking) PNR() string {
	id := b.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToUpper(id)
}

// BookingDetails is a booking joined with its schedule for display. Schedule
// is nil when the schedule was deleted after the booking was made.
type BookingDetails struct {
	Booking
	Schedule *Schedule `json:"schedule,omitempty"`
}
