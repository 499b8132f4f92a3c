package booking

import "fmt"

//nolint:gochecknoglobals
var transitions = map[Status][]Status{
	StatusUpcoming:  {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]

	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition reports whether a booking in state from may move to state to.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// transitionTo returns a mutation usable with the state store's Update.
func transitionTo(to Status) func(b *Booking) error {
	return func(b *Booking) error {
		if !CanTransition(b.Status, to) {
			return fmt.Errorf("booking %d is %s, cannot become %s: %w", b.ID, b.Status, to, ErrInvalidTransition)
		}

		b.Status = to

		return nil
	}
}
