package migration

import (
	"context"
	"fmt"

	"github.com/avstrong/spotscape/internal/logger"
	"github.com/avstrong/spotscape/internal/spot"
)

type storage interface {
	AddReview(ctx context.Context, r spot.Review) (spot.Review, error)
	Save(ctx context.Context, spots []spot.Spot) error
}

func Spots() []spot.Spot {
	return []spot.Spot{
		{
			ID:       1,
			Name:     "Delhi Central Park",
			Location: "Central Delhi",
			Price:    "200",
			Status:   spot.StatusActive,
			Features: []string{"covered", "cctv", "ev charging"},
			Rating:   4.6,
		},
		{
			ID:       2,
			Name:     "Mumbai Marine Drive",
			Location: "South Mumbai",
			Price:    "350",
			Status:   spot.StatusActive,
			Features: []string{"valet", "24/7 security"},
			Rating:   4.8,
		},
		{
			ID:       3,
			Name:     "Bangalore Tech Park",
			Location: "Whitefield",
			Price:    "250",
			Status:   spot.StatusInactive,
			Features: []string{"covered", "ev charging"},
			Rating:   4.3,
		},
	}
}

func Reviews() []spot.Review {
	return []spot.Review{
		{
			SpotID:   1,
			Username: "Priya Shah",
			Rating:   5,
			Comment:  "Excellent spot! Very convenient location and easy to find. The area was well-lit and felt secure.",
			Date:     "2025-05-01",
		},
		{
			SpotID:   2,
			Username: "Rajiv Kumar",
			Rating:   4,
			Comment:  "Good location with plenty of space. Only giving 4 stars because it gets crowded during peak hours.",
			Date:     "2025-04-22",
		},
	}
}

func Up(ctx context.Context, l *logger.Logger, storage storage) error {
	if l == nil {
		l = logger.Nop()
	}

	spots := Spots()

	if err := storage.Save(ctx, spots); err != nil {
		return fmt.Errorf("save spots to catalogue: %w", err)
	}

	reviews := Reviews()

	for _, r := range reviews {
		if _, err := storage.AddReview(ctx, r); err != nil {
			return fmt.Errorf("save review for spot %d: %w", r.SpotID, err)
		}
	}

	l.LogInfo("Seeded %d parking spots and %d reviews", len(spots), len(reviews))

	return nil
}
