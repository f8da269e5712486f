package scenario

// #region imports
import (
	"github.com/umaplay/career-agent/internal/evaluator"
)

// #endregion

// #region decide-training-action

// DecideTrainingAction applies the scenario-agnostic safeguards and
// lobby-precheck reordering described in spec §4.10, on top of a
// scenario-specific preliminary decision (computed by the policy's own
// on_lobby-style handler). Order matters: absolute safeguards always win,
// then the lobby-precheck reorder, then the preliminary action stands.
func DecideTrainingAction(state State, scored []evaluator.ScoredTile, preliminary Action) Action {
	if state.Energy <= state.AutoRestMinEnergy {
		return Action{Kind: ActionRest, Reason: "below_auto_rest_minimum"}
	}

	if state.TurnsToSummer <= 2 && state.Energy <= state.LowEnergyThreshold {
		return Action{Kind: ActionRest, Reason: "summer_approaching_low_energy"}
	}

	if state.IsMandatoryGoalRace && state.TurnsToMandatoryGoalRace <= state.Preset.GoalRaceForceTurns {
		return Action{Kind: ActionRace, Reason: "mandatory_goal_race_force_turns"}
	}

	if !state.Preset.LobbyPrecheckEnabled {
		return preliminary
	}
	if preliminary.Kind != ActionInfirmary && preliminary.Kind != ActionRest {
		return preliminary
	}

	best, ok := evaluator.Select(scored)
	if !ok || best.Disqualified || best.SV < state.Preset.RacePrecheckSV {
		return preliminary
	}

	tile := best.Tile
	return Action{Kind: ActionTrain, Tile: &tile, Reason: "lobby_precheck_top_training_opportunity"}
}

// #endregion

// #region preliminary-action

// PreliminaryAction picks the scenario-agnostic preliminary decision fed
// into DecideTrainingAction: train the top eligible tile when it clears the
// weak-turn threshold, else substitute Recreation-with-PAL for Rest when
// the PAL chain still yields energy (spec §4.5), else Rest when mood is
// below the preset's minimum, else Rest or Race depending on the preset's
// raceIfNoGoodValue flag. Both scenario policies
// share this — spec §4.10 names no per-scenario variation in the decision
// shape, only in the weights/thresholds that produced `scored`.
func PreliminaryAction(state State, scored []evaluator.ScoredTile) Action {
	if best, ok := evaluator.Select(scored); ok && !best.Disqualified && best.SV >= state.Preset.WeakTurnSVThreshold {
		tile := best.Tile
		return Action{Kind: ActionTrain, Tile: &tile, Reason: "sv_above_weak_turn_threshold"}
	}
	if state.PalIconPresent && state.PalNextStepYieldsEnergy {
		return Action{Kind: ActionRecreate, Reason: "pal_chain_yields_energy"}
	}
	if !state.Mood.AtLeast(state.Preset.MinMood) {
		return Action{Kind: ActionRest, Reason: "mood_below_minimum"}
	}
	if state.Preset.RaceIfNoGoodValue {
		return Action{Kind: ActionRace, Reason: "race_if_no_good_value"}
	}
	return Action{Kind: ActionRest, Reason: "no_good_training_value"}
}

// ChooseTrainingAction composes PreliminaryAction with DecideTrainingAction's
// absolute safeguards and lobby-precheck reorder — the full spec §4.10
// decision chain common to every scenario policy's OnLobby and
// ChooseTrainingAction methods.
func ChooseTrainingAction(state State, scored []evaluator.ScoredTile) Action {
	return DecideTrainingAction(state, scored, PreliminaryAction(state, scored))
}

// #endregion
