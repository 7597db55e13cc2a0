// Package donation implements the fixed-cycle donation-window controller:
// every 100 minutes of uptime, a configurable number of minutes are spent
// mining against a donation pool instead of the user's configured one,
// patterned after the reference miner's donation-cycle state machine and
// shaped, as a Config/Manager pair, after a pool server's vardiff and
// keepalive managers.
package donation

import (
	"fmt"
	"time"
)

const (
	// CycleLength is the total duration of one donation cycle.
	CycleLength = 100 * time.Minute

	// WindowStart is when the donation window opens within a cycle.
	WindowStart = 50 * time.Minute

	minLevel = 1
	maxLevel = 100
)

// Config describes one donation pool and how much of each cycle to spend
// mining against it.
type Config struct {
	Level int // minutes per 100-minute cycle; Validate rejects values outside [1, 100]
	URL   string
	User  string
	Pass  string
}

// DefaultConfig returns the conventional 1%-equivalent donation level.
func DefaultConfig() Config {
	return Config{Level: minLevel}
}

// Validate reports a config error if Level is outside [1, 100] or the
// donation URL is missing. It does not clamp Level: a value of 0 is an
// error, not a request for the minimum.
func (c Config) Validate() error {
	if c.Level < minLevel || c.Level > maxLevel {
		return fmt.Errorf("donation: level must be between %d and %d, got %d", minLevel, maxLevel, c.Level)
	}
	if c.URL == "" {
		return fmt.Errorf("donation: url is required")
	}
	return nil
}

// windowLength is the donation window's duration: max(1, Level) minutes.
func (c Config) windowLength() time.Duration {
	level := c.Level
	if level < minLevel {
		level = minLevel
	}
	return time.Duration(level) * time.Minute
}

// Manager tracks cycle position and reports, through Tick, the transition
// edge the caller should act on; the caller switches pools itself and
// records the outcome with Commit.
type Manager struct {
	cfg     Config
	start   time.Time
	donating bool
}

// NewManager creates a Manager whose first cycle begins at start.
func NewManager(cfg Config, start time.Time) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, start: start}, nil
}

// IsDonating reports the last committed donation state, without mutating
// it; callers change that state explicitly via Commit.
func (m *Manager) IsDonating() bool { return m.donating }

// Phase returns how far into the current 100-minute cycle now falls.
func (m *Manager) Phase(now time.Time) time.Duration {
	elapsed := now.Sub(m.start)
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed % CycleLength
}

// shouldDonate reports whether now falls within this cycle's donation
// window: [WindowStart, WindowStart+windowLength).
func (m *Manager) shouldDonate(now time.Time) bool {
	phase := m.Phase(now)
	windowEnd := WindowStart + m.cfg.windowLength()
	return phase >= WindowStart && phase < windowEnd
}

// Transition describes a donation/regular boundary crossing detected by
// Tick.
type Transition int

const (
	// NoTransition means the donation state did not change this tick.
	NoTransition Transition = iota
	// EnterDonation means the window was just entered.
	EnterDonation
	// ExitDonation means the window was just left.
	ExitDonation
)

// Tick evaluates the donation state for now against the last committed
// state and returns which edge, if any, should be acted on. It does not
// mutate the Manager: the caller must call Commit once the corresponding
// pool switch actually succeeds. Calling Tick repeatedly without a
// matching Commit keeps returning the same transition, so a failed
// switch is retried (EnterDonation) or kept pending (ExitDonation) on
// every later tick rather than being silently dropped.
func (m *Manager) Tick(now time.Time) Transition {
	want := m.shouldDonate(now)
	if want == m.donating {
		return NoTransition
	}
	if want {
		return EnterDonation
	}
	return ExitDonation
}

// Commit records that the pool switch implied by the most recent
// non-NoTransition Tick result actually succeeded. donating is the new
// state: true after a successful EnterDonation switch, false after a
// successful ExitDonation switch.
func (m *Manager) Commit(donating bool) {
	m.donating = donating
}

// Config returns the donation pool configuration this Manager switches to
// on EnterDonation.
func (m *Manager) Config() Config { return m.cfg }
