package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeamInvitation_Expired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	inv := TeamInvitation{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, inv.Expired(now))

	// Expiry boundary counts as expired.
	inv = TeamInvitation{ExpiresAt: now}
	assert.True(t, inv.Expired(now))

	inv = TeamInvitation{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, inv.Expired(now))
}

func TestTeamInvitation_Valid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		accepted bool
		expires  time.Time
		want     bool
	}{
		{"pending and live", false, now.Add(time.Hour), true},
		{"accepted", true, now.Add(time.Hour), false},
		{"expired", false, now.Add(-time.Hour), false},
		{"accepted and expired", true, now.Add(-time.Hour), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := TeamInvitation{Accepted: tc.accepted, ExpiresAt: tc.expires}
			assert.Equal(t, tc.want, inv.Valid(now))
		})
	}
}
