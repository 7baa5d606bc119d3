package scoring

import (
	"time"

	"roleradar/internal/config"
	"roleradar/internal/models"
)

// Weights for the four score components. Callers may supply any weighting;
// the result is only bounded by the final clamp.
type Weights struct {
	Job      float64
	Signal   float64
	Growth   float64
	Activity float64
}

func DefaultWeights() Weights {
	return Weights{Job: 0.4, Signal: 0.3, Growth: 0.2, Activity: 0.1}
}

func WeightsFromConfig(cfg config.WeightsConfig) Weights {
	return Weights{
		Job:      cfg.Job,
		Signal:   cfg.Signal,
		Growth:   cfg.Growth,
		Activity: cfg.Activity,
	}
}

const defaultRecentWindow = 90 * 24 * time.Hour

// Engine computes a company's desirability score. It is deterministic and
// stateless given its inputs: the same snapshot and clock always produce the
// same score.
type Engine struct {
	Weights Weights

	// RecentWindow is the rolling window, measured from scoring time, that a
	// signal must fall in to count. Zero means the 90-day default.
	RecentWindow time.Duration
}

func New(cfg config.ScoringConfig) *Engine {
	window := time.Duration(cfg.RecentWindowDays) * 24 * time.Hour
	return &Engine{
		Weights:      WeightsFromConfig(cfg.Weights),
		RecentWindow: window,
	}
}

// Window returns the effective rolling window.
func (e *Engine) Window() time.Duration {
	if e.RecentWindow <= 0 {
		return defaultRecentWindow
	}
	return e.RecentWindow
}

// Snapshot is the scoring input: the company's current active opening count
// and its signal history. Signals outside the rolling window are ignored, so
// a score can drop over time with no new data at all.
type Snapshot struct {
	ActiveOpportunities int
	Signals             []models.HiringSignal
}

// Score returns the company score in [0,100] as of now.
func (e *Engine) Score(snap Snapshot, now time.Time) float64 {
	window := e.RecentWindow
	if window <= 0 {
		window = defaultRecentWindow
	}
	cutoff := now.Add(-window)

	var recent []models.HiringSignal
	for _, sig := range snap.Signals {
		if sig.DetectedDate.After(cutoff) {
			recent = append(recent, sig)
		}
	}

	score := 0.0

	if snap.ActiveOpportunities > 0 {
		jobPoints := float64(snap.ActiveOpportunities) * 10
		if jobPoints > 40 {
			jobPoints = 40
		}
		score += jobPoints * e.Weights.Job
	}

	if len(recent) > 0 {
		sum := 0.0
		for _, sig := range recent {
			sum += sig.Confidence
		}
		avg := sum / float64(len(recent))
		score += avg * 100 * e.Weights.Signal
	}

	if hasGrowthSignal(recent) {
		score += 50 * e.Weights.Growth
	}

	if len(recent) > 0 {
		score += 100 * e.Weights.Activity
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func hasGrowthSignal(signals []models.HiringSignal) bool {
	for _, sig := range signals {
		if sig.SignalType == models.SignalFunding || sig.SignalType == models.SignalExpansion {
			return true
		}
	}
	return false
}
