package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/avstrong/spotscape/internal/logger"
	"github.com/avstrong/spotscape/internal/spot"
)

const tracerName = "github.com/avstrong/spotscape/internal/booking"

type idGenerator interface {
	GetID(ctx context.Context) (int64, error)
}

type stateReader interface {
	Get(id int64) (*Booking, bool)
	Bookings() []Booking
	Upcoming() []Booking
	Past() []Booking
}

type stateWriter interface {
	Add(ctx context.Context, b Booking) error
	Update(ctx context.Context, id int64, mutate func(b *Booking) error) (*Booking, error)
}

type state interface {
	stateReader
	stateWriter
}

type spotCatalog interface {
	Get(id int64) (*spot.Spot, bool)
}

// PaymentGateway charges the booking total before a booking is stored.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int64, method string) (*PaymentDetails, error)
}

type recorder interface {
	BookingCreated(method string)
	BookingTransitioned(status string)
	PaymentProcessed(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) BookingCreated(string)      {}
func (nopRecorder) BookingTransitioned(string) {}
func (nopRecorder) PaymentProcessed(string)    {}

type Conf struct {
	L           *logger.Logger
	State       state
	IDGenerator idGenerator
	Spots       spotCatalog
	Gateway     PaymentGateway
	Recorder    recorder
	Now         func() time.Time

	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

type Manager struct {
	l           *logger.Logger
	state       state
	idGenerator idGenerator
	spots       spotCatalog
	gateway     PaymentGateway
	recorder    recorder
	tracer      trace.Tracer
	now         func() time.Time
}

func New(conf Conf) *Manager {
	m := &Manager{
		l:           conf.L,
		state:       conf.State,
		idGenerator: conf.IDGenerator,
		spots:       conf.Spots,
		gateway:     conf.Gateway,
		recorder:    conf.Recorder,
		now:         conf.Now,
	}

	if m.l == nil {
		m.l = logger.Nop()
	}

	tp := conf.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	m.tracer = tp.Tracer(tracerName)

	if m.recorder == nil {
		m.recorder = nopRecorder{}
	}

	if m.now == nil {
		m.now = time.Now
	}

	return m
}

func (b *BookInput) validate() error {
	inputErr := newInputError()

	if b.SpotID <= 0 {
		inputErr.addError("spotId", "provide spotId")
	}

	if strings.TrimSpace(b.Date) == "" {
		inputErr.addError("date", "provide date")
	} else if _, err := time.Parse(DateLayout, b.Date); err != nil || len(b.Date) != len(DateLayout) {
		inputErr.addError("date", "date must be formatted as yyyy-MM-dd")
	}

	if strings.TrimSpace(b.Time) == "" {
		inputErr.addError("time", "provide time")
	} else if _, err := time.Parse(TimeLayout, b.Time); err != nil || len(b.Time) != len(TimeLayout) {
		inputErr.addError("time", "time must be formatted as HH:mm")
	}

	if b.Duration == 0 {
		inputErr.addError("duration", "provide duration")
	} else if !slices.Contains(AllowedDurations, b.Duration) {
		inputErr.addError("duration", fmt.Sprintf("duration must be one of %v hours", AllowedDurations))
	}

	if b.PaymentMethod != "" && !slices.Contains(PaymentMethods, b.PaymentMethod) {
		inputErr.addError("paymentMethod", fmt.Sprintf("paymentMethod must be one of %v", PaymentMethods))
	}

	if inputErr.fieldsCount() > 0 {
		return inputErr
	}

	return nil
}

// CreateBooking builds a record from input and appends it to the store. Input
// is trusted; no overlap check is made against existing bookings.
func (m *Manager) CreateBooking(ctx context.Context, input CreateInput) (*Booking, error) {
	ctx, span := m.tracer.Start(ctx, "booking.CreateBooking")
	defer span.End()

	if _, err := totalPrice(input.Duration, input.Price); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	id, err := m.idGenerator.GetID(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("%w: %w", ErrNextID, err)
	}

	b := NewBooking(id, input, m.now())

	if err := m.state.Add(ctx, b); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("add booking %v to state: %w", b.ID, err)
	}

	span.SetAttributes(attribute.Int64("booking.id", b.ID), attribute.Int64("booking.total_price", b.TotalPrice))
	m.recorder.BookingCreated(b.PaymentMethod)
	m.l.With("booking_id", b.ID).LogInfo("Booking created for spot %v on %v at %v", b.SpotID, b.Date, b.Time)

	return &b, nil
}

// Book validates input, charges the gateway and stores the booking on success.
// A failed payment leaves no record behind and is not retried.
func (m *Manager) Book(ctx context.Context, input *BookInput) (*Booking, *PaymentDetails, error) {
	ctx, span := m.tracer.Start(ctx, "booking.Book")
	defer span.End()

	if err := input.validate(); err != nil {
		return nil, nil, err
	}

	s, ok := m.spots.Get(input.SpotID)
	if !ok {
		return nil, nil, fmt.Errorf("spot %v: %w", input.SpotID, ErrSpotNotFound)
	}

	if !s.Active() {
		return nil, nil, fmt.Errorf("spot %v: %w", input.SpotID, ErrSpotInactive)
	}

	method := input.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	amount, err := totalPrice(input.Duration, s.Price)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, nil, fmt.Errorf("spot %v: %w", s.ID, err)
	}

	payment, err := m.gateway.Charge(ctx, amount, method)
	if err != nil {
		m.recorder.PaymentProcessed("failed")
		span.SetStatus(codes.Error, err.Error())
		m.l.LogWarnf("Payment of %v via %v for spot %v failed: %v", amount, method, s.ID, err.Error())

		if errors.Is(err, ErrPaymentFailed) {
			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("charge %v via %v: %w", amount, method, err)
	}

	m.recorder.PaymentProcessed("succeeded")

	b, err := m.CreateBooking(ctx, CreateInput{
		SpotID:        s.ID,
		SpotName:      s.Name,
		Date:          input.Date,
		Time:          input.Time,
		Duration:      input.Duration,
		Price:         s.Price,
		PaymentMethod: method,
	})
	if err != nil {
		m.l.LogErrorf("Payment %v succeeded but booking was not stored: %v", payment.TransactionID, err.Error())

		return nil, payment, fmt.Errorf("create booking: %w", err)
	}

	return b, payment, nil
}

// Transition moves a booking to status to. It returns ErrRecordNotFound for an
// unknown id and ErrInvalidTransition when the booking is no longer upcoming.
func (m *Manager) Transition(ctx context.Context, id int64, to Status) (*Booking, error) {
	ctx, span := m.tracer.Start(ctx, "booking.Transition", trace.WithAttributes(
		attribute.Int64("booking.id", id),
		attribute.String("booking.status", string(to)),
	))
	defer span.End()

	b, err := m.state.Update(ctx, id, transitionTo(to))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("transition booking %v to %v: %w", id, to, err)
	}

	m.recorder.BookingTransitioned(string(to))
	m.l.With("booking_id", id).LogInfo("Booking is now %v", to)

	return b, nil
}

// CancelBooking reports false when the booking does not exist or is not
// upcoming. The error is reserved for storage failures.
func (m *Manager) CancelBooking(ctx context.Context, id int64) (bool, error) {
	return m.transitionOK(ctx, id, StatusCancelled)
}

func (m *Manager) CompleteBooking(ctx context.Context, id int64) (bool, error) {
	return m.transitionOK(ctx, id, StatusCompleted)
}

func (m *Manager) transitionOK(ctx context.Context, id int64, to Status) (bool, error) {
	_, err := m.Transition(ctx, id, to)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrRecordNotFound), errors.Is(err, ErrInvalidTransition):
		return false, nil
	default:
		return false, err
	}
}

func (m *Manager) Get(id int64) (*Booking, bool) {
	return m.state.Get(id)
}

func (m *Manager) All() []Booking {
	return m.state.Bookings()
}

func (m *Manager) Upcoming() []Booking {
	return m.state.Upcoming()
}

func (m *Manager) Past() []Booking {
	return m.state.Past()
}
