package scenario

import (
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/evaluator"
	"github.com/umaplay/career-agent/internal/tiles"
)

func TestRegistryLookupMissingReturnsError(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Lookup(KeyURA); err == nil {
		t.Fatal("expected error for unregistered key")
	}
}

func basePreset() domain.Preset {
	return domain.Preset{
		LobbyPrecheckEnabled: true,
		RacePrecheckSV:       50,
		GoalRaceForceTurns:   2,
	}
}

func TestDecideTrainingActionRestsBelowAutoRestMinimum(t *testing.T) {
	state := State{Energy: 10, AutoRestMinEnergy: 20, Preset: basePreset()}
	action := DecideTrainingAction(state, nil, Action{Kind: ActionTrain})
	if action.Kind != ActionRest || action.Reason != "below_auto_rest_minimum" {
		t.Fatalf("got %+v", action)
	}
}

func TestDecideTrainingActionForcesRaceWithinForceTurns(t *testing.T) {
	state := State{
		Energy:                   80,
		AutoRestMinEnergy:        20,
		Preset:                   basePreset(),
		IsMandatoryGoalRace:      true,
		TurnsToMandatoryGoalRace: 1,
	}
	action := DecideTrainingAction(state, nil, Action{Kind: ActionInfirmary})
	if action.Kind != ActionRace {
		t.Fatalf("got %+v", action)
	}
}

func TestDecideTrainingActionReordersIntoTrainingWhenSVHighEnough(t *testing.T) {
	state := State{Energy: 80, AutoRestMinEnergy: 20, Preset: basePreset()}
	scored := []evaluator.ScoredTile{
		{Tile: tiles.Features{Stat: domain.StatSPD}, SV: 70},
	}
	action := DecideTrainingAction(state, scored, Action{Kind: ActionRest})
	if action.Kind != ActionTrain || action.Tile == nil {
		t.Fatalf("got %+v", action)
	}
}

func TestDecideTrainingActionKeepsPreliminaryWhenSVTooLow(t *testing.T) {
	state := State{Energy: 80, AutoRestMinEnergy: 20, Preset: basePreset()}
	scored := []evaluator.ScoredTile{
		{Tile: tiles.Features{Stat: domain.StatSPD}, SV: 10},
	}
	action := DecideTrainingAction(state, scored, Action{Kind: ActionRest})
	if action.Kind != ActionRest {
		t.Fatalf("got %+v", action)
	}
}

func TestDecideTrainingActionSummerSafeguardOverridesPrecheck(t *testing.T) {
	state := State{
		Energy:             30,
		AutoRestMinEnergy:  20,
		LowEnergyThreshold: 40,
		TurnsToSummer:      1,
		Preset:             basePreset(),
	}
	scored := []evaluator.ScoredTile{{Tile: tiles.Features{Stat: domain.StatSPD}, SV: 90}}
	action := DecideTrainingAction(state, scored, Action{Kind: ActionInfirmary})
	if action.Kind != ActionRest || action.Reason != "summer_approaching_low_energy" {
		t.Fatalf("got %+v", action)
	}
}
