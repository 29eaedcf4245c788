package model

import (
	"testing"
	"time"
)

func TestToday_UsesUTCDate(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"utc", time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC), "2025-03-14"},
		{"ahead of utc", time.Date(2025, 3, 15, 7, 30, 0, 0, tokyo), "2025-03-14"},
		{"behind utc", time.Date(2025, 3, 14, 20, 0, 0, 0, time.FixedZone("EDT", -4*60*60)), "2025-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Today(tt.at); got != tt.want {
				t.Fatalf("Today(%v) = %q, want %q", tt.at, got, tt.want)
			}
		})
	}
}
