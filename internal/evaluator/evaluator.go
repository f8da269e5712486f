// Package evaluator computes per-training-tile support value (SV) and risk,
// honoring scenario and preset (spec §4.6). Grounded in internal/eval's
// config-driven weighted metric checks and internal/gate's hard-veto-before-
// soft-score ordering — here "risk disqualifies regardless of SV" plays the
// role of gate's hard veto, applied before the burst allow-list filter.
package evaluator

// #region imports
import (
	"fmt"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/tiles"
)

// #endregion

// #region evaluator

// Evaluator scores training tiles using scenario-provided weights and
// tuning config.
type Evaluator struct {
	Weights   domain.ScoreWeights
	Config    Config
	Ownership Ownership
}

// New builds an Evaluator. ownership may be nil, in which case no hint is
// ever zeroed for being already-owned.
func New(weights domain.ScoreWeights, cfg Config, ownership Ownership) *Evaluator {
	return &Evaluator{Weights: weights, Config: cfg, Ownership: ownership}
}

// #endregion

// #region score

// Score computes an ordered-by-input ScoredTile for every feature set.
// Callers use Select to pick the top eligible tile subject to policy gates.
func (e *Evaluator) Score(ctx ScoreContext, feats []tiles.Features, current, target domain.StatVector, preset domain.Preset) []ScoredTile {
	out := make([]ScoredTile, 0, len(feats))
	for _, f := range feats {
		out = append(out, e.scoreOne(ctx, f, current, target, preset))
	}
	return out
}

func (e *Evaluator) scoreOne(ctx ScoreContext, f tiles.Features, current, target domain.StatVector, preset domain.Preset) ScoredTile {
	sv := e.baseSV(f)
	sv *= e.multiplier(ctx, preset)

	disqualified := f.FailurePercent > e.Config.MaxFailure
	burstBlocked := e.burstBlocked(f, current, target, preset)

	explanation := fmt.Sprintf("base+combo=%.2f after multipliers", sv)
	if disqualified {
		explanation = fmt.Sprintf("%s; disqualified: failure %.1f%% > max %.1f%%", explanation, f.FailurePercent, e.Config.MaxFailure)
	}
	if burstBlocked {
		explanation = fmt.Sprintf("%s; burst-blocked: stat %s not in burst allow-list or at cap", explanation, f.Stat)
	}

	return ScoredTile{Tile: f, SV: sv, Disqualified: disqualified, BurstBlocked: burstBlocked, Explanation: explanation}
}

// #endregion

// #region base-sv

func (e *Evaluator) baseSV(f tiles.Features) float64 {
	w := e.Weights
	sv := w.Rainbow*float64(f.RainbowCount) +
		w.WhiteSpiritFill*float64(f.WhiteSpiritFillCount) +
		w.WhiteSpiritExplode*float64(f.WhiteSpiritExplodedCount) +
		w.BlueSpirit*float64(f.BlueSpiritCount) +
		e.hintContribution(f)

	if f.WhiteSpiritFillCount >= 2 {
		sv += w.WhiteCombo
	}
	if f.RainbowCount >= 2 {
		sv += w.RainbowCombo
	}
	if f.BlueSpiritCount >= 2 {
		sv += w.BlueCombo
	}
	return sv
}

// hintContribution sums the per-hint weight, zeroing out hints whose
// source card is already owned at any grade and applying per-card
// multipliers where configured.
func (e *Evaluator) hintContribution(f tiles.Features) float64 {
	if f.HintCount == 0 {
		return 0
	}
	if len(f.HintSourceCards) == 0 {
		return e.Weights.Hint * float64(f.HintCount)
	}

	var total float64
	for _, card := range f.HintSourceCards {
		if e.owned(card) {
			continue
		}
		mult := 1.0
		if m, ok := e.Config.CardMultipliers[card]; ok {
			mult = m
		}
		total += e.Weights.Hint * mult
	}
	return total
}

func (e *Evaluator) owned(card string) bool {
	if e.Ownership == nil {
		return false
	}
	ok, err := e.Ownership.HasAnyGrade(card)
	return err == nil && ok
}

// #endregion

// #region multipliers

// multiplier combines the seasonal multiplier (Unity Cup only) and the
// deadline/burst boosts.
func (e *Evaluator) multiplier(ctx ScoreContext, preset domain.Preset) float64 {
	m := 1.0
	if ctx.IsUnityCup && preset.UnityCupAdvanced != nil {
		if seasonal, ok := preset.UnityCupAdvanced.SeasonalMultiplier[ctx.Date.Year]; ok {
			m *= seasonal
		}
	}
	switch {
	case e.Config.BurstFinalTurns > 0 && ctx.TurnsToMilestone <= e.Config.BurstFinalTurns:
		m *= e.Config.BurstFinalTurnsBoost
	case e.Config.DeadlineWindowTurns > 0 && ctx.TurnsToMilestone <= e.Config.DeadlineWindowTurns:
		m *= e.Config.DeadlineBoost
	}
	return m
}

// #endregion

// #region burst-allow-list

// burstBlocked reports whether a tile's blue spirit would violate the
// Unity Cup burst allow-list (spec §8): landing on a stat not in
// burstAllowedStats, or on a stat already at/above its target cap.
func (e *Evaluator) burstBlocked(f tiles.Features, current, target domain.StatVector, preset domain.Preset) bool {
	if f.BlueSpiritCount == 0 {
		return false
	}
	adv := preset.UnityCupAdvanced
	if adv == nil {
		return false
	}
	if !adv.BurstAllowedStats[f.Stat] {
		return true
	}
	return current.AtOrAboveCap(target, f.Stat)
}

// #endregion

// #region select

// Select returns the top eligible tile: disqualified tiles are always
// excluded; burst-blocked tiles are excluded unless every remaining
// candidate is burst-blocked, in which case the highest-SV one among them
// is used (spec §8's "unless it was the only feasible candidate").
func Select(scored []ScoredTile) (ScoredTile, bool) {
	var eligible []ScoredTile
	for _, s := range scored {
		if !s.Disqualified {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return ScoredTile{}, false
	}

	var unblocked []ScoredTile
	for _, s := range eligible {
		if !s.BurstBlocked {
			unblocked = append(unblocked, s)
		}
	}
	pool := unblocked
	if len(pool) == 0 {
		pool = eligible // every candidate is burst-blocked: allow it
	}

	best := pool[0]
	for _, s := range pool[1:] {
		if s.SV > best.SV {
			best = s
		}
	}
	return best, true
}

// #endregion
