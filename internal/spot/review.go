package spot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5

	anonymous = "You"
)

var (
	ErrNotFound      = errors.New("spot not found")
	ErrInvalidReview = errors.New("invalid review")
)

type Review struct {
	ID       int64  `json:"id"`
	SpotID   int64  `json:"spotId"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

// AddReview stores r for its spot and returns it with id and date filled in.
// An empty username becomes "You", as on the spot page.
func (c *Catalog) AddReview(ctx context.Context, r Review) (Review, error) {
	if err := ctx.Err(); err != nil {
		return Review{}, err
	}

	r.Comment = strings.TrimSpace(r.Comment)
	r.Username = strings.TrimSpace(r.Username)

	switch {
	case r.Rating < MinRating || r.Rating > MaxRating:
		return Review{}, fmt.Errorf("rating must be between %d and %d: %w", MinRating, MaxRating, ErrInvalidReview)
	case r.Comment == "":
		return Review{}, fmt.Errorf("comment is required: %w", ErrInvalidReview)
	}

	if r.Username == "" {
		r.Username = anonymous
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.spots[r.SpotID]; !ok {
		return Review{}, fmt.Errorf("spot %d: %w", r.SpotID, ErrNotFound)
	}

	if r.Date == "" {
		r.Date = c.now().UTC().Format("2006-01-02")
	}

	c.lastRev++
	r.ID = c.lastRev

	c.reviews[r.SpotID] = append(c.reviews[r.SpotID], r)

	return r, nil
}

// Reviews lists the reviews of a spot, newest first.
func (c *Catalog) Reviews(spotID int64) ([]Review, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.spots[spotID]; !ok {
		return nil, fmt.Errorf("spot %d: %w", spotID, ErrNotFound)
	}

	reviews := slices.Clone(c.reviews[spotID])
	slices.Reverse(reviews)

	if reviews == nil {
		reviews = []Review{}
	}

	return reviews, nil
}
