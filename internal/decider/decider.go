// Package decider picks an option in a branching event dialog using
// priorities and overflow rules (spec §4.7). Grounded in
// internal/gate.Gate.Evaluate (hard check first, ordered fallback after)
// and internal/orchestrator.StrategySelector.SelectRetry (walk a
// priority-ordered table, skipping already-rejected options).
package decider

// #region imports
import (
	"fmt"
	"sort"
)

// #endregion

// #region decider

// Decider chooses an event option given an explicit-override table and a
// per-entity policy.
type Decider struct {
	Overrides map[string]int // "eventKey#step" -> option index
}

// New builds a Decider bound to an override table. overrides may be nil.
func New(overrides map[string]int) *Decider {
	if overrides == nil {
		overrides = map[string]int{}
	}
	return &Decider{Overrides: overrides}
}

// #endregion

// #region choose

// Choose implements the override -> default-preference -> overflow-rotation
// chain. Returns the chosen option index and a short reason for logging.
func (d *Decider) Choose(eventKey string, step int, options []OptionOutcome, energy, energyCap int, policy EntityPolicy) (int, string) {
	if idx, ok := d.Overrides[overrideKey(eventKey, step)]; ok && idx >= 0 && idx < len(options) {
		return idx, "override"
	}

	preferred := policy.DefaultOption
	if preferred < 0 || preferred >= len(options) {
		preferred = 0
	}

	if policy.AvoidEnergyOverflow && options[preferred].Overflows(energy, energyCap) {
		if idx, ok := rotateForAcceptable(options, energy, energyCap, policy.RewardPriority); ok {
			return idx, "overflow_rotation"
		}
	}

	return preferred, "default_preference"
}

// overrideKey matches spec §4.7's "event-key#step" override lookup.
func overrideKey(eventKey string, step int) string {
	return fmt.Sprintf("%s#%d", eventKey, step)
}

// #endregion

// #region rotation

// rotateForAcceptable ranks options by reward priority (highest-priority
// reward type weighted most) and returns the first that does not overflow.
func rotateForAcceptable(options []OptionOutcome, energy, energyCap int, rewardPriority []string) (int, bool) {
	type ranked struct {
		idx   int
		score float64
	}
	ranks := make([]ranked, len(options))
	for i, opt := range options {
		ranks[i] = ranked{idx: i, score: rewardScore(opt, rewardPriority)}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].score > ranks[j].score })

	for _, r := range ranks {
		if !options[r.idx].Overflows(energy, energyCap) {
			return r.idx, true
		}
	}
	return 0, false
}

// rewardScore weights each reward type by its position in rewardPriority
// (earlier entries dominate later ones).
func rewardScore(opt OptionOutcome, rewardPriority []string) float64 {
	var score float64
	n := len(rewardPriority)
	for i, kind := range rewardPriority {
		tier := float64(n - i)
		switch kind {
		case "skill_pts":
			score += tier * float64(opt.SkillPoints)
		case "stats":
			var total int
			for _, v := range opt.StatsDelta {
				total += v
			}
			score += tier * float64(total)
		case "hints":
			score += tier * float64(len(opt.Hints))
		}
	}
	return score
}

// #endregion

// #region acupuncturist

// AutoConfirmAcceptReconsider reports whether a follow-up dialog with only
// accept/reconsider buttons should auto-confirm accept, per spec §4.7's
// acupuncturist-style two-phase dialog rule.
func AutoConfirmAcceptReconsider(buttonLabels []string) bool {
	if len(buttonLabels) != 2 {
		return false
	}
	hasAccept, hasReconsider := false, false
	for _, l := range buttonLabels {
		switch l {
		case "accept":
			hasAccept = true
		case "reconsider":
			hasReconsider = true
		}
	}
	return hasAccept && hasReconsider
}

// #endregion
