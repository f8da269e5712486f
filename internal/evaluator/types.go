package evaluator

// #region imports
import (
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/tiles"
)

// #endregion

// #region config

// Config holds the tuning knobs the training evaluator applies on top of
// the base weighted score (spec §4.6).
type Config struct {
	MaxFailure            float64            // tile disqualified if FailurePercent exceeds this
	DeadlineWindowTurns   int                // turns-to-milestone at which the deadline boost begins
	DeadlineBoost         float64            // multiplier applied inside the deadline window
	BurstFinalTurns       int                // turns-to-milestone at which the stronger burst boost begins
	BurstFinalTurnsBoost  float64            // multiplier applied inside the final-turns window
	CardMultipliers       map[string]float64 // per hint-source-card multiplier, default 1.0
}

// DefaultConfig returns the scenario-default tuning used by URA when a
// scenario does not override it.
func DefaultConfig() Config {
	return Config{
		MaxFailure:           20.0,
		DeadlineWindowTurns:  4,
		DeadlineBoost:        1.25,
		BurstFinalTurns:      2,
		BurstFinalTurnsBoost: 1.6,
		CardMultipliers:      map[string]float64{},
	}
}

// #endregion

// #region context

// ScoreContext is per-tick information the scoring pass needs beyond the
// tile features themselves.
type ScoreContext struct {
	Date             domain.Date
	TurnsToMilestone int
	IsUnityCup       bool
}

// #endregion

// #region scored-tile

// ScoredTile is one evaluated tile: its SV, whether risk disqualifies it,
// whether a Unity Cup burst-allow-list rule blocks it from a burst pick,
// and a human-readable explanation for logging.
type ScoredTile struct {
	Tile         tiles.Features
	SV           float64
	Disqualified bool
	BurstBlocked bool
	Explanation  string
}

// #endregion

// #region ownership

// Ownership reports whether a skill has been purchased at any grade, used
// to zero out hints whose source card is already owned. Satisfied by
// internal/memory.SkillMemory.
type Ownership interface {
	HasAnyGrade(name string) (bool, error)
}

// #endregion
