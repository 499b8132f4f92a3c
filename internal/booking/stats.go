package booking

import "github.com/avstrong/spotscape/internal/spot"

type SpotStats struct {
	SpotID   int64  `json:"spotId"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Status   string `json:"status"`
	Bookings int    `json:"bookings"`
	Revenue  int64  `json:"revenue"`
}

type Stats struct {
	TotalRevenue  int64          `json:"totalRevenue"`
	TotalBookings int            `json:"totalBookings"`
	ActiveSpots   int            `json:"activeSpots"`
	TotalSpots    int            `json:"totalSpots"`
	ByStatus      map[Status]int `json:"byStatus"`
	Spots         []SpotStats    `json:"spots"`
}

// Summarize builds the admin overview. Cancelled bookings count as bookings
// but bring no revenue. Bookings for spots missing from spots are counted in
// the totals only.
func Summarize(bookings []Booking, spots []spot.Spot) Stats {
	st := Stats{
		TotalBookings: len(bookings),
		TotalSpots:    len(spots),
		ByStatus: map[Status]int{
			StatusUpcoming:  0,
			StatusCompleted: 0,
			StatusCancelled: 0,
		},
		Spots: make([]SpotStats, 0, len(spots)),
	}

	index := make(map[int64]int, len(spots))

	for i, s := range spots {
		if s.Active() {
			st.ActiveSpots++
		}

		index[s.ID] = i
		st.Spots = append(st.Spots, SpotStats{SpotID: s.ID, Name: s.Name, Location: s.Location, Status: s.Status})
	}

	for _, b := range bookings {
		st.ByStatus[b.Status]++

		var revenue int64
		if b.Status != StatusCancelled {
			revenue = b.TotalPrice
		}

		st.TotalRevenue += revenue

		if i, ok := index[b.SpotID]; ok {
			st.Spots[i].Bookings++
			st.Spots[i].Revenue += revenue
		}
	}

	return st
}
