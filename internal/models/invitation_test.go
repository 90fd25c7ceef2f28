package models

import (
	"testing"
	"time"
)

func TestInvitationPending(t *testing.T) {
	expires := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		accepted bool
		now      time.Time
		want     bool
	}{
		{"before expiry", false, expires.Add(-time.Hour), true},
		{"at exact expiry", false, expires, true},
		{"just past expiry", false, expires.Add(time.Millisecond), false},
		{"already accepted", true, expires.Add(-time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Invitation{Accepted: tt.accepted, ExpiresAt: expires}
			if got := inv.Pending(tt.now); got != tt.want {
				t.Fatalf("Pending(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}
