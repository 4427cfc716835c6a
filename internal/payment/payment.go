package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/Domenick1991/busbooking/internal/domain"
)

type Outcome string

const (
	Accepted Outcome = "accepted"
	Rejected Outcome = "rejected"
)

// Gateway verifies a payment. An error means the verification itself could
// not complete; a decline is a Rejected outcome.
type Gateway interface {
	Verify(ctx context.Context, method domain.PaymentMethod, amountCents int64) (Outcome, error)
}

// Simulator stands in for a bank: it waits Delay and then declines with
// probability DeclineRate.
type Simulator struct {
	delay       time.Duration
	declineRate float64

	mu   sync.Mutex
	rand *rand.Rand
}

type SimulatorOption func(*Simulator)

// WithRandSource replaces the random source used for the decline draw.
func WithRandSource(src rand.Source) SimulatorOption {
	return func(s *Simulator) {
		s.rand = rand.New(src)
	}
}

func NewSimulator(delay time.Duration, declineRate float64, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		delay:       delay,
		declineRate: declineRate,
		rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Verify(ctx context.Context, _ domain.PaymentMethod, _ int64) (Outcome, error) {
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	draw := s.rand.Float64()
	s.mu.Unlock()

	if draw < s.declineRate {
		return Rejected, nil
	}
	return Accepted, nil
}

// Fake returns preset outcomes without waiting. Outcomes are looked up by
// payment method first, then Default.
type Fake struct {
	Default  Outcome
	ByMethod map[domain.PaymentMethod]Outcome
	Err      error
	// OnVerify, when set, runs before the outcome is returned.
	OnVerify func(ctx context.Context)

	mu    sync.Mutex
	calls int
}

func (f *Fake) Verify(ctx context.Context, method domain.PaymentMethod, _ int64) (Outcome, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.OnVerify != nil {
		f.OnVerify(ctx)
	}
	if f.Err != nil {
		return "", f.Err
	}
	if outcome, ok := f.ByMethod[method]; ok {
		return outcome, nil
	}
	if f.Default == "" {
		return Accepted, nil
	}
	return f.Default, nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	_ Gateway = (*Simulator)(nil)
	_ Gateway = (*Fake)(nil)
)
