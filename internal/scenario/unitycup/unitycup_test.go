package unitycup

import (
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/evaluator"
	"github.com/umaplay/career-agent/internal/scenario"
	"github.com/umaplay/career-agent/internal/tiles"
)

func TestPolicyKeyAndClassifierIncludesKashimoto(t *testing.T) {
	p := New()
	if p.Key() != scenario.KeyUnityCup {
		t.Fatalf("got key %q", p.Key())
	}
	frame := domain.NewFrame(0, []domain.Detection{
		{Class: classKashimotoHeader, Confidence: 0.9},
	})
	if got := p.Classifier().Classify(frame); got != domain.ScreenKashimotoTeam {
		t.Fatalf("got %s", got)
	}
}

func TestOpponentForResolvesFromAdvancedBlock(t *testing.T) {
	date := domain.Date{Year: domain.YearSenior, Month: 6, Half: 1}
	preset := domain.Preset{
		UnityCupAdvanced: &domain.UnityCupAdvanced{
			OpponentSelection: map[domain.Date]string{date: "rival_team_a"},
		},
	}
	name, ok := OpponentFor(preset, date)
	if !ok || name != "rival_team_a" {
		t.Fatalf("got %q, %v", name, ok)
	}
}

func TestOpponentForMissingAdvancedBlock(t *testing.T) {
	if _, ok := OpponentFor(domain.Preset{}, domain.Date{}); ok {
		t.Fatal("expected no opponent without an advanced block")
	}
}

func TestOnLobbyRecreatesWithPalInsteadOfRest(t *testing.T) {
	p := New()
	state := scenario.State{
		Energy:                  80,
		AutoRestMinEnergy:       20,
		Mood:                    domain.MoodBad,
		PalIconPresent:          true,
		PalNextStepYieldsEnergy: true,
		Preset: domain.Preset{
			MinMood:             domain.MoodNormal,
			WeakTurnSVThreshold: 30,
		},
	}
	scored := []evaluator.ScoredTile{
		{Tile: tiles.Features{Stat: domain.StatSPD}, SV: 5},
	}
	action := p.OnLobby(state, scored)
	if action.Kind != scenario.ActionRecreate {
		t.Fatalf("got %+v", action)
	}
}
