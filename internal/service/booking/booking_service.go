package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/kafka"
	"github.com/Domenick1991/busbooking/internal/payment"
	"github.com/Domenick1991/busbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	publishTimeout = 10 * time.Second
	publishRetries = 3
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, caller auth.Identity, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, caller auth.Identity, id string) (*domain.Booking, error)
	GetBooking(ctx context.Context, caller auth.Identity, id string) (*domain.BookingDetails, error)
	ListBookings(ctx context.Context, caller auth.Identity) ([]domain.BookingDetails, error)
	ListAllBookings(ctx context.Context, caller auth.Identity) ([]domain.BookingDetails, error)
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value any, maxRetries int) error
}

// Dispatcher queues a confirmation for delivery without blocking.
type Dispatcher interface {
	Dispatch(ctx context.Context, c kafka.Confirmation) error
}

// Cache is told whenever booked seats change so schedule searches stay fresh.
type Cache interface {
	InvalidateSchedules(ctx context.Context) error
}

type CreateBookingInput struct {
	ScheduleID     string                `json:"scheduleId"`
	Seats          []string              `json:"seats"`
	PaymentMethod  domain.PaymentMethod  `json:"paymentMethod"`
	TransactionID  string                `json:"transactionId,omitempty"`
	PassengerName  string                `json:"passengerName"`
	PassengerPhone string                `json:"passengerPhone"`
	DeliveryMethod domain.DeliveryMethod `json:"deliveryMethod,omitempty"`
}

type BookingService struct {
	bookings   repository.BookingRepository
	schedules  repository.ScheduleRepository
	payments   payment.Gateway
	dispatcher Dispatcher
	cache      Cache
	producer   Producer

	bookingTopic       string
	notificationsTopic string

	log *zap.Logger
	now func() time.Time
	wg  sync.WaitGroup
}

type BookingServiceOption func(*BookingService)

// WithProducer publishes booking events to topic.
func WithProducer(producer Producer, topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = topic
	}
}

// WithNotificationsTopic also publishes confirmations to Kafka for the worker.
func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithDispatcher(d Dispatcher) BookingServiceOption {
	return func(s *BookingService) {
		s.dispatcher = d
	}
}

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithLogger(log *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	schedules repository.ScheduleRepository,
	payments payment.Gateway,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:  bookings,
		schedules: schedules,
		payments:  payments,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking checks the seats, takes payment with no lock held and then
// commits the booking and its seats atomically. A seat taken while the
// payment was in flight yields a SeatConflictError with AfterPayment set.
func (s *BookingService) CreateBooking(ctx context.Context, caller auth.Identity, input CreateBookingInput) (*domain.Booking, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := normalize(&input); err != nil {
		return nil, err
	}

	schedule, err := s.schedules.GetByID(ctx, input.ScheduleID)
	if err != nil {
		return nil, err
	}

	vehicle := schedule.Vehicle
	if vehicle == nil {
		vehicle = &domain.Vehicle{}
	}
	if unknown := vehicle.UnknownSeats(input.Seats); len(unknown) > 0 {
		return nil, domain.NewValidationError("seats", "unknown seats "+strings.Join(unknown, ", "))
	}

	if taken := schedule.Overlap(input.Seats); len(taken) > 0 {
		return nil, &domain.SeatConflictError{Seats: taken}
	}

	total := int64(len(input.Seats)) * schedule.PriceCents

	outcome, err := s.payments.Verify(ctx, input.PaymentMethod, total)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if outcome != payment.Accepted {
		s.log.Info("payment declined",
			zap.String("user_id", caller.UserID),
			zap.String("schedule_id", schedule.ID),
			zap.String("payment_method", string(input.PaymentMethod)))
		return nil, domain.ErrPaymentDeclined
	}

	paymentID := input.TransactionID
	if paymentID == "" {
		paymentID = fmt.Sprintf("PAY_%s_%d", strings.ToUpper(string(input.PaymentMethod)), s.now().UnixMilli())
	}

	booking := &domain.Booking{
		ID:             uuid.NewString(),
		UserID:         caller.UserID,
		ScheduleID:     schedule.ID,
		Seats:          input.Seats,
		TotalCents:     total,
		Status:         domain.BookingStatusBooked,
		PassengerName:  input.PassengerName,
		PassengerPhone: input.PassengerPhone,
		DeliveryMethod: input.DeliveryMethod,
		PaymentMethod:  input.PaymentMethod,
		PaymentID:      paymentID,
	}

	if err := s.bookings.Commit(ctx, booking); err != nil {
		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			s.log.Error("seats taken after payment, payment must be voided",
				zap.String("payment_id", paymentID),
				zap.String("schedule_id", schedule.ID),
				zap.Strings("seats", conflict.Seats))
			return nil, &domain.SeatConflictError{Seats: conflict.Seats, AfterPayment: true, PaymentID: paymentID}
		}
		s.log.Error("commit booking after payment",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return nil, fmt.Errorf("commit booking (payment %s): %w", paymentID, err)
	}

	s.invalidate(ctx)
	s.publishEvent(ctx, kafka.EventBookingCreated, booking)
	s.confirm(ctx, booking, schedule)

	s.log.Info("booking confirmed",
		zap.String("booking_id", booking.ID),
		zap.String("pnr", booking.PNR()),
		zap.Strings("seats", booking.Seats),
		zap.Int64("total_cents", booking.TotalCents))
	return booking, nil
}

func normalize(input *CreateBookingInput) error {
	input.Seats = slices.Clone(input.Seats)
	input.PassengerName = strings.TrimSpace(input.PassengerName)
	input.PassengerPhone = strings.TrimSpace(input.PassengerPhone)

	switch {
	case input.ScheduleID == "":
		return domain.NewValidationError("scheduleId", "is required")
	case input.PassengerName == "":
		return domain.NewValidationError("passengerName", "is required")
	case input.PassengerPhone == "":
		return domain.NewValidationError("passengerPhone", "is required")
	case input.PaymentMethod == "":
		return domain.NewValidationError("paymentMethod", "is required")
	case !input.PaymentMethod.Valid():
		return domain.NewValidationError("paymentMethod", "must be one of card, upi, netbanking")
	case len(input.Seats) == 0:
		return domain.NewValidationError("seats", "at least one seat is required")
	}

	if input.DeliveryMethod == "" {
		input.DeliveryMethod = domain.DeliverySMS
	}
	if !input.DeliveryMethod.Valid() {
		return domain.NewValidationError("deliveryMethod", "must be sms or whatsapp")
	}

	seen := make(map[string]struct{}, len(input.Seats))
	for i, seat := range input.Seats {
		seat = strings.TrimSpace(seat)
		if seat == "" {
			return domain.NewValidationError("seats", "empty seat label")
		}
		if _, dup := seen[seat]; dup {
			return domain.NewValidationError("seats", "duplicate seat "+seat)
		}
		seen[seat] = struct{}{}
		input.Seats[i] = seat
	}
	return nil
}

// CancelBooking releases the booking's seats. Staff only.
func (s *BookingService) CancelBooking(ctx context.Context, caller auth.Identity, id string) (*domain.Booking, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsStaff() {
		return nil, domain.ErrForbidden
	}

	cancelled, err := s.bookings.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.publishEvent(ctx, kafka.EventBookingCancelled, cancelled)
	s.log.Info("booking cancelled",
		zap.String("booking_id", cancelled.ID),
		zap.String("by", caller.UserID),
		zap.Strings("seats", cancelled.Seats))
	return cancelled, nil
}

// GetBooking returns a booking to its owner or to staff. Other callers get
// ErrNotFound so booking ids cannot be enumerated.
func (s *BookingService) GetBooking(ctx context.Context, caller auth.Identity, id string) (*domain.BookingDetails, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsStaff() && b.UserID != caller.UserID {
		return nil, fmt.Errorf("get booking %s: %w", id, domain.ErrNotFound)
	}

	details := &domain.BookingDetails{Booking: *b}
	schedule, err := s.schedules.GetByID(ctx, b.ScheduleID)
	switch {
	case err == nil:
		details.Schedule = schedule
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return details, nil
}

func (s *BookingService) ListBookings(ctx context.Context, caller auth.Identity) ([]domain.BookingDetails, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.bookings.ListByUser(ctx, caller.UserID)
}

func (s *BookingService) ListAllBookings(ctx context.Context, caller auth.Identity) ([]domain.BookingDetails, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if !caller.IsStaff() {
		return nil, domain.ErrForbidden
	}
	return s.bookings.ListAll(ctx)
}

// Close waits for in-flight event publishing.
func (s *BookingService) Close() {
	s.wg.Wait()
}

func (s *BookingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSchedules(ctx); err != nil {
		s.log.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}

func (s *BookingService) confirm(ctx context.Context, b *domain.Booking, schedule *domain.Schedule) {
	c := kafka.Confirmation{PNR: b.PNR(), Phone: b.PassengerPhone}
	if schedule.Route != nil {
		c.Source = schedule.Route.Source
		c.Destination = schedule.Route.Destination
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, c); err != nil {
			s.log.Warn("dispatch confirmation", zap.String("pnr", c.PNR), zap.Error(err))
		}
	}
	if s.producer != nil && s.notificationsTopic != "" {
		s.publish(ctx, s.notificationsTopic, b.ID, c)
	}
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	s.publish(ctx, s.bookingTopic, b.ID, kafka.NewBookingEvent(eventType, b))
}

// publish writes to Kafka in the background, retrying within publishTimeout.
// Failures are logged only.
func (s *BookingService) publish(ctx context.Context, topic, key string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		if err := s.producer.PublishWithRetry(ctx, topic, key, payload, publishRetries); err != nil {
			s.log.Warn("publish failed", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
		}
	}()
}

var _ BookingUseCase = (*BookingService)(nil)
