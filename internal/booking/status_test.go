package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		shouldAllow bool
	}{
		{"upcoming to completed", StatusUpcoming, StatusCompleted, true},
		{"upcoming to cancelled", StatusUpcoming, StatusCancelled, true},
		{"upcoming to upcoming", StatusUpcoming, StatusUpcoming, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, false},
		{"cancelled is terminal", StatusCancelled, StatusCompleted, false},
		{"cancelled to upcoming", StatusCancelled, StatusUpcoming, false},
		{"unknown source", Status("archived"), StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shouldAllow, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStatusValidAndTerminal(t *testing.T) {
	assert.True(t, StatusUpcoming.Valid())
	assert.False(t, StatusUpcoming.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, Status("pending").Valid())
	assert.False(t, Status("pending").Terminal())
}

func TestTransitionToMutatesStatusOnly(t *testing.T) {
	b := Booking{ID: 42, Status: StatusUpcoming, TotalPrice: 400}

	require.NoError(t, transitionTo(StatusCancelled)(&b))
	assert.Equal(t, Booking{ID: 42, Status: StatusCancelled, TotalPrice: 400}, b)

	err := transitionTo(StatusCancelled)(&b)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, b.Status)
}

func TestBookInputValidate(t *testing.T) {
	valid := BookInput{SpotID: 1, Date: "2025-06-15", Time: "14:00", Duration: 2, PaymentMethod: "card"}
	require.NoError(t, valid.validate())

	tests := []struct {
		name   string
		mutate func(in *BookInput)
		field  string
	}{
		{"missing spot", func(in *BookInput) { in.SpotID = 0 }, "spotId"},
		{"missing date", func(in *BookInput) { in.Date = "" }, "date"},
		{"bad date", func(in *BookInput) { in.Date = "15/06/2025" }, "date"},
		{"missing time", func(in *BookInput) { in.Time = "" }, "time"},
		{"bad time", func(in *BookInput) { in.Time = "2pm" }, "time"},
		{"missing duration", func(in *BookInput) { in.Duration = 0 }, "duration"},
		{"duration outside allow-list", func(in *BookInput) { in.Duration = 7 }, "duration"},
		{"unknown payment method", func(in *BookInput) { in.PaymentMethod = "cash" }, "paymentMethod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			inputErr := IsInputError(in.validate())
			require.NotNil(t, inputErr)
			assert.Contains(t, inputErr.Fields(), tt.field)
		})
	}

	noMethod := valid
	noMethod.PaymentMethod = ""
	assert.NoError(t, noMethod.validate())
}
