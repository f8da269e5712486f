package decider

// #region imports
import (
	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region option

// OptionOutcome is one event option's catalog-recorded outcome.
type OptionOutcome struct {
	StatsDelta  domain.StatVector
	EnergyDelta int
	MoodDelta   int
	Hints       []string
	SkillPoints int
	Status      string
}

// Overflows reports whether taking this option would push energy over cap.
func (o OptionOutcome) Overflows(energy, energyCap int) bool {
	return energy+o.EnergyDelta > energyCap
}

// #endregion

// #region entity-policy

// EntityPolicy is the per-entity (support/scenario/trainee) default
// preference and reward-priority configuration spec §4.7 describes.
type EntityPolicy struct {
	DefaultOption       int
	AvoidEnergyOverflow bool
	RewardPriority      []string // e.g. ["skill_pts", "stats", "hints"], highest first
}

// #endregion
