package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"zero", 0, "0m 0s"},
		{"negative clamps to zero", -5 * time.Second, "0m 0s"},
		{"seconds only", 42 * time.Second, "0m 42s"},
		{"minutes and seconds", 3*time.Minute + 9*time.Second, "3m 9s"},
		{"just under an hour", 59*time.Minute + 59*time.Second, "59m 59s"},
		{"exactly an hour", time.Hour, "1h 0m"},
		{"hours and minutes", 2*time.Hour + 30*time.Minute, "2h 30m"},
		{"seconds dropped above an hour", time.Hour + 59*time.Second, "1h 0m"},
		{"sub-second rounds", 700 * time.Millisecond, "0m 1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}
