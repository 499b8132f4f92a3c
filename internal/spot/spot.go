// Package spot holds the parking-spot catalogue bookings are made against.
package spot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/avstrong/spotscape/internal/money"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	AvailabilityAll    = "all"
	AvailabilityActive = "active"
)

var ErrInvalidSpot = errors.New("invalid spot")

type Spot struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Price    string   `json:"price"`
	Status   string   `json:"status"`
	Features []string `json:"features,omitempty"`
	Rating   float64  `json:"rating,omitempty"`
}

func (s *Spot) Active() bool {
	return s.Status == StatusActive
}

type Filter struct {
	Location     string
	MinPrice     int64
	MaxPrice     int64 // 0 means unbounded
	Availability string
}

type Catalog struct {
	mu      sync.RWMutex
	spots   map[int64]Spot
	reviews map[int64][]Review
	lastRev int64
	now     func() time.Time
}

func NewCatalog() *Catalog {
	return &Catalog{
		spots:   make(map[int64]Spot),
		reviews: make(map[int64][]Review),
		now:     time.Now,
	}
}

// Save inserts or replaces spots by id.
func (c *Catalog) Save(_ context.Context, spots []Spot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range spots {
		if s.ID <= 0 || strings.TrimSpace(s.Name) == "" {
			return ErrInvalidSpot
		}

		if _, err := money.Parse(s.Price); err != nil {
			return fmt.Errorf("spot %d price %q: %w: %w", s.ID, s.Price, ErrInvalidSpot, err)
		}
	}

	for _, s := range spots {
		s.Features = append([]string(nil), s.Features...)
		c.spots[s.ID] = s
	}

	return nil
}

func (c *Catalog) Get(id int64) (*Spot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.spots[id]
	if !ok {
		return nil, false
	}

	return &s, true
}

func (c *Catalog) List(f Filter) []Spot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	location := strings.ToLower(strings.TrimSpace(f.Location))
	result := make([]Spot, 0, len(c.spots))

	for _, s := range c.spots {
		if location != "" &&
			!strings.Contains(strings.ToLower(s.Location), location) &&
			!strings.Contains(strings.ToLower(s.Name), location) {
			continue
		}

		price := hourlyRate(s.Price)
		if price < f.MinPrice || (f.MaxPrice > 0 && price > f.MaxPrice) {
			continue
		}

		if f.Availability == AvailabilityActive && !s.Active() {
			continue
		}

		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result
}

// Save rejects prices that overflow.
func hourlyRate(price string) int64 {
	v, _ := money.Parse(price)

	return v
}
