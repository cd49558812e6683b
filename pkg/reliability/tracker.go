package reliability

import (
	"math"
	"sort"
	"sync"
	"time"
)

// TrackerConfig names the scoring constants.
type TrackerConfig struct {
	// Decay is the per-second multiplicative fade applied to both
	// accumulators before every update.
	Decay float64

	// MinSamples is the effective sample mass below which scores shrink
	// toward neutral, so one success does not yield full trust.
	MinSamples float64
}

// DefaultTrackerConfig returns the tuned defaults.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{Decay: 0.98, MinSamples: 5}
}

type toolStats struct {
	success    float64
	fail       float64
	lastUpdate time.Time
}

// Tracker maintains a continuously decayed success ratio per tool. Old
// outcomes fade by elapsed wall-clock time rather than in discrete windows,
// so a tool that failed yesterday is not condemned forever.
//
// Safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*toolStats
	cfg   TrackerConfig
	now   func() time.Time
}

// NewTracker creates a tracker with the given config.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		stats: make(map[string]*toolStats),
		cfg:   cfg,
		now:   time.Now,
	}
}

// NewTrackerWithClock creates a tracker with an injected clock for tests.
func NewTrackerWithClock(cfg TrackerConfig, now func() time.Time) *Tracker {
	t := NewTracker(cfg)
	t.now = now
	return t
}

// Record folds one execution outcome into the tool's accumulators, decaying
// the existing mass by elapsed seconds first.
func (t *Tracker) Record(toolName string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	st, ok := t.stats[toolName]
	if !ok {
		st = &toolStats{lastUpdate: now}
		t.stats[toolName] = st
	}

	elapsed := now.Sub(st.lastUpdate).Seconds()
	if elapsed > 0 {
		factor := math.Pow(t.cfg.Decay, elapsed)
		st.success *= factor
		st.fail *= factor
	}
	st.lastUpdate = now

	if success {
		st.success++
	} else {
		st.fail++
	}
}

// Score returns the decayed success ratio for a tool, shrunk linearly toward
// a neutral 0.5 while the effective sample mass is below MinSamples. Unknown
// tools score neutral.
func (t *Tracker) Score(toolName string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.stats[toolName]
	if !ok {
		return 0.5
	}
	samples := st.success + st.fail
	if samples == 0 {
		return 0.5
	}
	raw := st.success / samples
	if samples < t.cfg.MinSamples {
		return 0.5 + (raw-0.5)*samples/t.cfg.MinSamples
	}
	return raw
}

// Volatility returns 4p(1-p) over the raw success ratio. It peaks at 1.0
// when the tool succeeds half the time and drops to 0 at the extremes.
func (t *Tracker) Volatility(toolName string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	st, ok := t.stats[toolName]
	if !ok {
		return 0
	}
	samples := st.success + st.fail
	if samples == 0 {
		return 0
	}
	p := st.success / samples
	return 4 * p * (1 - p)
}

// AllScores returns the current score per tracked tool, keyed by name.
func (t *Tracker) AllScores() map[string]float64 {
	t.mu.RLock()
	names := make([]string, 0, len(t.stats))
	for name := range t.stats {
		names = append(names, name)
	}
	t.mu.RUnlock()

	sort.Strings(names)
	out := make(map[string]float64, len(names))
	for _, name := range names {
		out[name] = t.Score(name)
	}
	return out
}
