// Package mock simulates a payment gateway: after a fixed delay a charge
// succeeds with a configured probability and fails otherwise. It stands in for
// a real gateway and keeps no transaction log.
package mock

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avstrong/spotscape/internal/booking"
)

const (
	DefaultDelay       = 2 * time.Second
	DefaultSuccessRate = 0.95
	DefaultCurrency    = "INR"

	statusCompleted = "completed"
)

type Config struct {
	Delay       time.Duration
	SuccessRate float64
	Currency    string
	// Rand drives the success draw. Tests pass a seeded source.
	Rand *rand.Rand
}

type Gateway struct {
	delay       time.Duration
	successRate float64
	currency    string

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(conf Config) *Gateway {
	g := &Gateway{
		delay:       conf.Delay,
		successRate: conf.SuccessRate,
		currency:    conf.Currency,
		rnd:         conf.Rand,
	}

	if g.delay < 0 {
		g.delay = DefaultDelay
	}

	if g.successRate <= 0 || g.successRate > 1 {
		g.successRate = DefaultSuccessRate
	}

	if g.currency == "" {
		g.currency = DefaultCurrency
	}

	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}

	return g
}

// Charge blocks for the configured delay, then draws the outcome. A failure
// wraps booking.ErrPaymentFailed.
//
// A payment in flight is abandoned when ctx is done: Charge returns ctx.Err()
// and no booking is made. Over HTTP this means a client that disconnects
// during the delay cancels its own payment.
func (g *Gateway) Charge(ctx context.Context, amount int64, method string) (*booking.PaymentDetails, error) {
	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for payment: %w", ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("wait for payment: %w", err)
	}

	if !g.succeeds() {
		return nil, booking.ErrPaymentFailed
	}

	return &booking.PaymentDetails{
		Method:        method,
		Amount:        amount,
		Currency:      g.currency,
		Status:        statusCompleted,
		TransactionID: "TXN" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
	}, nil
}

func (g *Gateway) succeeds() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rnd.Float64() < g.successRate
}
