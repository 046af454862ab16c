package domain

import (
	"testing"
	"time"
)

func TestFormattedDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		isStream bool
		want     string
	}{
		{"zero", 0, false, "00:00"},
		{"seconds only", 42 * time.Second, false, "00:42"},
		{"minutes and seconds", 3*time.Minute + 5*time.Second, false, "03:05"},
		{"exactly an hour", time.Hour, false, "01:00:00"},
		{"hours", 2*time.Hour + 34*time.Minute + 56*time.Second, false, "02:34:56"},
		{"stream", 10 * time.Minute, true, "LIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &Track{Duration: tt.duration, IsStream: tt.isStream}
			if got := track.FormattedDuration(); got != tt.want {
				t.Errorf("FormattedDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}
