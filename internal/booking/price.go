package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/avstrong/spotscape/internal/money"
)

// ParsePrice keeps only the ASCII digits of price, so "₹200", "$10.50" and
// "200/hr" become 200, 1050 and 200. A price without digits, or one too large
// for int64, is 0.
func ParsePrice(price string) int64 {
	v, err := money.Parse(price)
	if err != nil {
		return 0
	}

	return v
}

// TotalPrice is duration × ParsePrice(price), or 0 when either overflows.
// CreateBooking and Book reject such input with ErrInvalidPrice first.
func TotalPrice(duration int, price string) int64 {
	total, err := totalPrice(duration, price)
	if err != nil {
		return 0
	}

	return total
}

func totalPrice(duration int, price string) (int64, error) {
	rate, err := money.Parse(price)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w: %w", price, ErrInvalidPrice, err)
	}

	total, err := money.Total(duration, rate)
	if err != nil {
		return 0, fmt.Errorf("%d hours at %q: %w: %w", duration, price, ErrInvalidPrice, err)
	}

	return total, nil
}

// NewBooking builds an upcoming booking from already validated input.
func NewBooking(id int64, input CreateInput, now time.Time) Booking {
	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = DefaultPaymentMethod
	}

	return Booking{
		ID:            id,
		SpotID:        input.SpotID,
		SpotName:      input.SpotName,
		Date:          input.Date,
		Time:          input.Time,
		Duration:      input.Duration,
		Price:         input.Price,
		TotalPrice:    TotalPrice(input.Duration, input.Price),
		Status:        StatusUpcoming,
		BookedAt:      now.UTC(),
		PaymentMethod: method,
	}
}
