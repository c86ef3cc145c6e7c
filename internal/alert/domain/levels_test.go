package domain

import (
	"testing"
	"time"
)

func TestLevelForUtilization(t *testing.T) {
	cases := []struct {
		utilization float64
		want        Level
	}{
		{0, LevelNone},
		{79.999, LevelNone},
		{80, LevelWarning},
		{89.999, LevelWarning},
		{90, LevelCritical},
		{99.999, LevelCritical},
		{100, LevelExceeded},
		{150, LevelExceeded},
		{-10, LevelNone},
	}

	for _, tc := range cases {
		if got := LevelForUtilization(tc.utilization); got != tc.want {
			t.Fatalf("LevelForUtilization(%v) = %q, want %q", tc.utilization, got, tc.want)
		}
	}
}

func TestDayBucketForUsesUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	at := time.Date(2025, 3, 14, 23, 30, 0, 0, loc)

	if got := DayBucketFor(at); got != "2025-03-15" {
		t.Fatalf("DayBucketFor = %q, want 2025-03-15", got)
	}
}
