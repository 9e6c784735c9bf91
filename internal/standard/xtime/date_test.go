// Copyright 2026 Peter Edge
//
// All rights reserved.

package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimeToDate(t *testing.T) {
	t.Parallel()
	kathmandu := time.FixedZone("NPT", 5*60*60+45*60)
	for _, test := range []struct {
		time     time.Time
		expected Date
	}{
		{
			time:     time.Date(2014, time.August, 20, 15, 8, 43, 1, time.UTC),
			expected: Date{2014, time.August, 20},
		},
		{
			time:     time.Date(999, time.January, 26, 0, 0, 0, 0, time.UTC),
			expected: Date{999, time.January, 26},
		},
		{
			// 20:00 UTC is already the next day in Kathmandu.
			time:     time.Date(2024, time.October, 14, 20, 0, 0, 0, time.UTC).In(kathmandu),
			expected: Date{2024, time.October, 15},
		},
		{
			time:     time.Date(2024, time.October, 14, 20, 0, 0, 0, time.UTC),
			expected: Date{2024, time.October, 14},
		},
	} {
		require.Equal(t, test.expected, TimeToDate(test.time), test.time.String())
	}
}

func TestToday(t *testing.T) {
	t.Parallel()
	location := time.FixedZone("NPT", 5*60*60+45*60)
	before := TimeToDate(time.Now().In(location))
	today := Today(location)
	after := TimeToDate(time.Now().In(location))
	if before != after {
		t.Skip("date changed during test")
	}
	require.Equal(t, before, today)
}
