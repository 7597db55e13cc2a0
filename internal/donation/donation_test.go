package donation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsOutOfRangeLevel(t *testing.T) {
	cfg := Config{Level: 0, URL: "donate.example:3333"}
	assert.Error(t, cfg.Validate())

	cfg.Level = 101
	assert.Error(t, cfg.Validate())

	cfg.Level = 5
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresURL(t *testing.T) {
	cfg := Config{Level: 1}
	assert.Error(t, cfg.Validate())
}

func TestTickEntersAndExitsDonationWindow(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cfg := Config{Level: 2, URL: "donate.example:3333"}
	m, err := NewManager(cfg, start)
	require.NoError(t, err)

	assert.Equal(t, NoTransition, m.Tick(start.Add(49*time.Minute)))
	assert.False(t, m.IsDonating())

	assert.Equal(t, EnterDonation, m.Tick(start.Add(50*time.Minute)))
	assert.False(t, m.IsDonating(), "Tick alone must not flip state; Commit does")
	m.Commit(true)
	assert.True(t, m.IsDonating())

	assert.Equal(t, NoTransition, m.Tick(start.Add(51*time.Minute)))
	assert.True(t, m.IsDonating())

	assert.Equal(t, ExitDonation, m.Tick(start.Add(52*time.Minute)))
	assert.True(t, m.IsDonating(), "still committed until Commit(false) is called")
	m.Commit(false)
	assert.False(t, m.IsDonating())
}

func TestTickRepeatsAcrossCycles(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cfg := Config{Level: 1, URL: "donate.example:3333"}
	m, err := NewManager(cfg, start)
	require.NoError(t, err)

	assert.Equal(t, EnterDonation, m.Tick(start.Add(CycleLength+50*time.Minute)))
	m.Commit(true)
	assert.Equal(t, ExitDonation, m.Tick(start.Add(CycleLength+51*time.Minute)))
	m.Commit(false)
}

func TestFailedSwitchLeavesStateUncommittedForRetry(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cfg := Config{Level: 2, URL: "donate.example:3333"}
	m, err := NewManager(cfg, start)
	require.NoError(t, err)

	// Simulate a failed connect at the entering edge: Tick is called but
	// Commit never happens, since the caller's pool switch failed.
	assert.Equal(t, EnterDonation, m.Tick(start.Add(50*time.Minute)))
	assert.False(t, m.IsDonating())

	// The next tick, with no Commit in between, must still ask for the
	// same transition so the caller retries the switch.
	assert.Equal(t, EnterDonation, m.Tick(start.Add(50*time.Minute+time.Second)))
	assert.False(t, m.IsDonating())

	// Once the retry succeeds and Commit runs, subsequent ticks inside
	// the window report no further transition.
	m.Commit(true)
	assert.Equal(t, NoTransition, m.Tick(start.Add(50*time.Minute+2*time.Second)))
}

func TestFailedExitLeavesDonatingUntilRetrySucceeds(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	cfg := Config{Level: 2, URL: "donate.example:3333"}
	m, err := NewManager(cfg, start)
	require.NoError(t, err)

	assert.Equal(t, EnterDonation, m.Tick(start.Add(50*time.Minute)))
	m.Commit(true)

	// Exit edge reached, but the caller's reconnect to the configured
	// pool fails: no Commit, so the Manager still reports donating.
	assert.Equal(t, ExitDonation, m.Tick(start.Add(52*time.Minute)))
	assert.True(t, m.IsDonating())

	// Next tick still asks to exit, letting the caller retry.
	assert.Equal(t, ExitDonation, m.Tick(start.Add(52*time.Minute+time.Second)))
	assert.True(t, m.IsDonating())

	m.Commit(false)
	assert.Equal(t, NoTransition, m.Tick(start.Add(52*time.Minute+2*time.Second)))
}

func TestDefaultConfigLevelIsOneMinute(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1, cfg.Level)
	assert.Equal(t, time.Minute, cfg.windowLength())
}
