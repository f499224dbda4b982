package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeSnapshotDefaults(t *testing.T) {
	snap, err := TakeSnapshot(StaticSource{})
	require.NoError(t, err)

	assert.Equal(t, 0.05, snap.AlertThreshold)
	assert.Equal(t, 2*time.Second, snap.ScrapeDelay)
	assert.NotEmpty(t, snap.UserAgents)
}

func TestTakeSnapshotOverrides(t *testing.T) {
	snap, err := TakeSnapshot(StaticSource{
		KeyAlertThreshold: "0.10",
		KeyScrapeDelay:    "0.5",
		KeyUserAgentPool:  "agent-a, agent-b\nagent-c",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.10, snap.AlertThreshold)
	assert.Equal(t, 500*time.Millisecond, snap.ScrapeDelay)
	assert.Equal(t, []string{"agent-a", "agent-b", "agent-c"}, snap.UserAgents)
}

func TestTakeSnapshotInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  StaticSource
	}{
		{"unparseable threshold", StaticSource{KeyAlertThreshold: "five percent"}},
		{"zero threshold", StaticSource{KeyAlertThreshold: "0"}},
		{"threshold of one", StaticSource{KeyAlertThreshold: "1"}},
		{"negative threshold", StaticSource{KeyAlertThreshold: "-0.05"}},
		{"unparseable delay", StaticSource{KeyScrapeDelay: "soon"}},
		{"negative delay", StaticSource{KeyScrapeDelay: "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TakeSnapshot(tt.src)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestTakeSnapshotBlankPoolFallsBack(t *testing.T) {
	snap, err := TakeSnapshot(StaticSource{KeyUserAgentPool: " , \n "})
	require.NoError(t, err)
	assert.Equal(t, defaultUserAgents, snap.UserAgents)
}
