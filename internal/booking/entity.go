package booking

import "time"

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultPaymentMethod = "card"
)

//nolint:gochecknoglobals
var (
	AllowedDurations = []int{1, 2, 3, 4, 5, 6, 8, 12, 24}
	PaymentMethods   = []string{"card", "upi", "netbanking", "wallet"}
)

type Booking struct {
	ID            int64     `json:"id"`
	SpotID        int64     `json:"spotId"`
	SpotName      string    `json:"spotName"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Duration      int       `json:"duration"`
	Price         string    `json:"price"`
	TotalPrice    int64     `json:"totalPrice"`
	Status        Status    `json:"status"`
	BookedAt      time.Time `json:"bookedAt"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}

// CreateInput is what the factory needs to build a record. Callers are
// expected to have validated it already.
type CreateInput struct {
	SpotID        int64
	SpotName      string
	Date          string
	Time          string
	Duration      int
	Price         string
	PaymentMethod string
}

// BookInput is the user-facing request: the spot is referenced by id and
// resolved against the catalogue.
type BookInput struct {
	SpotID        int64  `json:"spotId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Duration      int    `json:"duration"`
	PaymentMethod string `json:"paymentMethod"`
}

type PaymentDetails struct {
	Method        string `json:"method"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}
