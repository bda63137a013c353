package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		total     int64
		want      float64
	}{
		{"no tasks means zero, not NaN", 0, 0, 0},
		{"all completed", 5, 5, 100},
		{"none completed", 0, 5, 0},
		{"two thirds", 2, 3, 66.66666666666666},
		{"one of eight", 1, 8, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, completionRate(tt.completed, tt.total), 1e-9)
		})
	}
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("TEST", 3*60*60)
	at := time.Date(2025, 6, 15, 14, 30, 45, 123, loc)

	start, end := dayBounds(at)

	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 6, 15, 23, 59, 59, int(time.Second-time.Nanosecond), loc), end)
	assert.True(t, start.Before(at))
	assert.True(t, end.After(at))
}
