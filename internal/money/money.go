// Package money reads the free-form price strings spots are listed with.
package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var ErrOverflow = errors.New("amount does not fit in int64")

// Parse keeps only the ASCII digits of s, so "₹200", "$10.50" and "200/hr"
// become 200, 1050 and 200. A string without digits is 0.
func Parse(s string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)

	if digits == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrOverflow
	}

	return v, nil
}

// Total is units × rate. Both are expected to be non-negative.
func Total(units int, rate int64) (int64, error) {
	if units < 0 || rate < 0 {
		return 0, ErrOverflow
	}

	if rate != 0 && int64(units) > math.MaxInt64/rate {
		return 0, ErrOverflow
	}

	return int64(units) * rate, nil
}
