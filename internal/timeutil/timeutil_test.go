package timeutil_test

import (
	"testing"
	"time"

	"github.com/avollmer/workbridge/internal/timeutil"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "zero duration",
			duration: 0,
			expected: "0s",
		},
		{
			name:     "seconds only",
			duration: 45 * time.Second,
			expected: "45s",
		},
		{
			name:     "boundary - 59 seconds",
			duration: 59 * time.Second,
			expected: "59s",
		},
		{
			name:     "boundary - 60 seconds",
			duration: 60 * time.Second,
			expected: "1m 0s",
		},
		{
			name:     "minutes and seconds",
			duration: 1*time.Minute + 23*time.Second,
			expected: "1m 23s",
		},
		{
			name:     "short batch run",
			duration: 12 * time.Second,
			expected: "12s",
		},
		{
			name:     "long migration run",
			duration: 42*time.Minute + 7*time.Second,
			expected: "42m 7s",
		},
		{
			name:     "hours render as minutes",
			duration: 2*time.Hour + 15*time.Minute,
			expected: "135m 0s",
		},
		{
			name:     "rounds to nearest second",
			duration: 1400 * time.Millisecond,
			expected: "1s",
		},
		{
			name:     "tie rounds away from zero",
			duration: 1500 * time.Millisecond,
			expected: "2s",
		},
		{
			name:     "sub-second rounds up",
			duration: 900 * time.Millisecond,
			expected: "1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := timeutil.FormatDuration(tt.duration)
			if result != tt.expected {
				t.Errorf("FormatDuration(%v) = %q, expected %q", tt.duration, result, tt.expected)
			}
		})
	}
}
