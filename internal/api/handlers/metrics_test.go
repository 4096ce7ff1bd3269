package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "seconds", d: 1500 * time.Millisecond, want: "1.50s"},
		{name: "minutes", d: 2*time.Minute + 3*time.Second, want: "2m3.00s"},
		{name: "hours", d: time.Hour + 1*time.Minute + 250*time.Millisecond, want: "1h1m0.25s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatUptime(tt.d))
		})
	}
}
