package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avstrong/spotscape/internal/booking"
	"github.com/avstrong/spotscape/internal/spot"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

type bookResponse struct {
	Booking *booking.Booking        `json:"booking"`
	Payment *booking.PaymentDetails `json:"payment"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}

	return id, nil
}

func queryInt(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}

	return v, nil
}

func (s *Server) listSpotsHandler(w http.ResponseWriter, r *http.Request) {
	minPrice, err := queryInt(r, "minPrice")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	maxPrice, err := queryInt(r, "maxPrice")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	availability := r.URL.Query().Get("availability")
	if availability != "" && availability != spot.AvailabilityAll && availability != spot.AvailabilityActive {
		s.writeError(w, http.StatusBadRequest, "availability must be all or active")

		return
	}

	s.writeJSON(w, http.StatusOK, s.spots.List(spot.Filter{
		Location:     r.URL.Query().Get("location"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Availability: availability,
	}))
}

func (s *Server) getSpotHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	found, ok := s.spots.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, booking.ErrSpotNotFound.Error())

		return
	}

	s.writeJSON(w, http.StatusOK, found)
}

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	var bookings []booking.Booking

	switch r.URL.Query().Get("filter") {
	case "", "all":
		bookings = s.bManager.All()
	case "upcoming":
		bookings = s.bManager.Upcoming()
	case "past":
		bookings = s.bManager.Past()
	default:
		s.writeError(w, http.StatusBadRequest, "filter must be all, upcoming or past")

		return
	}

	s.writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	b, ok := s.bManager.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, booking.ErrRecordNotFound.Error())

		return
	}

	s.writeJSON(w, http.StatusOK, b)
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.BookInput

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))

		return
	}

	b, payment, err := s.bManager.Book(r.Context(), &input)
	if inputErr := booking.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: inputErr.Fields()})

		return
	}

	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, bookResponse{Booking: b, Payment: payment})
	case errors.Is(err, booking.ErrSpotNotFound):
		s.writeError(w, http.StatusNotFound, booking.ErrSpotNotFound.Error())
	case errors.Is(err, booking.ErrSpotInactive):
		s.writeError(w, http.StatusConflict, booking.ErrSpotInactive.Error())
	case errors.Is(err, booking.ErrInvalidPrice):
		s.writeError(w, http.StatusConflict, booking.ErrInvalidPrice.Error())
	case errors.Is(err, booking.ErrPaymentFailed):
		s.writeError(w, http.StatusPaymentRequired, booking.ErrPaymentFailed.Error())
	default:
		s.l.LogErrorf("Could not create a booking: %v", err.Error())
		s.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (s *Server) transitionHandler(to booking.Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())

			return
		}

		b, err := s.bManager.Transition(r.Context(), id, to)

		switch {
		case err == nil:
			s.writeJSON(w, http.StatusOK, b)
		case errors.Is(err, booking.ErrRecordNotFound):
			s.writeError(w, http.StatusNotFound, booking.ErrRecordNotFound.Error())
		case errors.Is(err, booking.ErrInvalidTransition):
			s.writeError(w, http.StatusConflict, fmt.Sprintf("booking %d is not upcoming", id))
		default:
			s.l.LogErrorf("Could not move booking %v to %v: %v", id, to, err.Error())
			s.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
	}
}

type reviewRequest struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

func (s *Server) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	reviews, err := s.spots.Reviews(id)
	if err != nil {
		s.writeError(w, http.StatusNotFound, spot.ErrNotFound.Error())

		return
	}

	s.writeJSON(w, http.StatusOK, reviews)
}

func (s *Server) addReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	var req reviewRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))

		return
	}

	review, err := s.spots.AddReview(r.Context(), spot.Review{
		SpotID:   id,
		Username: req.Username,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})

	switch {
	case err == nil:
		s.writeJSON(w, http.StatusCreated, review)
	case errors.Is(err, spot.ErrNotFound):
		s.writeError(w, http.StatusNotFound, spot.ErrNotFound.Error())
	case errors.Is(err, spot.ErrInvalidReview):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.l.LogErrorf("Could not add review for spot %v: %v", id, err.Error())
		s.writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, booking.Summarize(s.bManager.All(), s.spots.List(spot.Filter{})))
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	common := func(h http.Handler) http.Handler {
		return s.applyMiddlewares(h, s.loggerMiddleware(), s.recoverMiddleware(), s.requestIDMiddleware())
	}
	limited := func(h http.Handler) http.Handler {
		return common(s.rateLimitMiddleware()(h))
	}

	r.Handle("GET /api/spots/v1", common(http.HandlerFunc(s.listSpotsHandler)))
	r.Handle("GET /api/spots/v1/{id}", common(http.HandlerFunc(s.getSpotHandler)))
	r.Handle("GET /api/spots/v1/{id}/reviews", common(http.HandlerFunc(s.listReviewsHandler)))
	r.Handle("POST /api/spots/v1/{id}/reviews", limited(http.HandlerFunc(s.addReviewHandler)))
	r.Handle("GET /api/stats/v1", common(http.HandlerFunc(s.statsHandler)))
	r.Handle("GET /api/bookings/v1", common(http.HandlerFunc(s.listBookingsHandler)))
	r.Handle("GET /api/bookings/v1/{id}", common(http.HandlerFunc(s.getBookingHandler)))
	r.Handle("POST /api/bookings/v1", limited(http.HandlerFunc(s.createBookingHandler)))
	r.Handle("POST /api/bookings/v1/{id}/cancel", limited(s.transitionHandler(booking.StatusCancelled)))
	r.Handle("POST /api/bookings/v1/{id}/complete", limited(s.transitionHandler(booking.StatusCompleted)))
	r.Handle(
		fmt.Sprintf("GET %s", s.conf.LivenessEndpoint),
		common(http.HandlerFunc(s.livenessHandler)),
	)

	if s.conf.MetricsHandler != nil && s.conf.MetricsEndpoint != "" {
		r.Handle(fmt.Sprintf("GET %s", s.conf.MetricsEndpoint), s.conf.MetricsHandler)
	}
}
