package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/scenario"
)

const sampleYAML = `
general:
  hotkey: "F12"
  debug: true
  auto_rest_min_energy: 20
  undertrain_threshold: 15
  top_stats_focus: ["SPD", "STA"]
  skill_check_interval_turns: 4
  skill_pts_delta_threshold: 150
  scenario: "ura"
  controller_kind: "desktop"
  scenario_confirmed: true

scenarios:
  ura:
    presets:
      - name: "default"
        priority_stats: ["SPD", "STA"]
        target_stats:
          SPD: 1200
          STA: 900
        min_mood: "normal"
        junior_min_mood: "good"
        debut_style: "late"
        style_schedule:
          - from: {year: 1, month: 1, half: 1}
            style: "late"
        skills_to_buy: ["Standard Distance"]
        planned_races:
          - date: {year: 3, month: 6, half: 2}
            name: "Takarazuka Kinen"
            tentative: false
        race_if_no_good_value: true
        weak_turn_sv_threshold: 30
        race_precheck_sv: 50
        lobby_precheck_enabled: true
        goal_race_force_turns: 2
  unity_cup:
    presets:
      - name: "default"
        min_mood: "normal"
        debut_style: "late"
        unity_cup_advanced:
          burst_allowed_stats: ["SPD", "PWR"]
          weights:
            rainbow: 12
            blue_spirit: 10
          seasonal_multiplier:
            - year: 3
              multiplier: 1.2
          opponent_selection:
            - date: {year: 3, month: 6, half: 1}
              opponent: "rival_team_a"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesGeneralAndPresets(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	doc := l.Current()

	if doc.General.Hotkey != "F12" || !doc.General.Debug {
		t.Fatalf("got general %+v", doc.General)
	}
	if doc.General.ControllerKindValue() != ports.ControllerDesktop {
		t.Fatalf("got controller kind %q", doc.General.ControllerKindValue())
	}
	if doc.General.ScenarioKey() != scenario.KeyURA {
		t.Fatalf("got scenario key %q", doc.General.ScenarioKey())
	}

	preset, ok := doc.PresetByName(scenario.KeyURA, "default")
	if !ok {
		t.Fatal("expected a default URA preset")
	}
	if preset.TargetStats[domain.StatSPD] != 1200 {
		t.Fatalf("got target stats %+v", preset.TargetStats)
	}
	if preset.JuniorMinMood == nil || *preset.JuniorMinMood != domain.MoodGood {
		t.Fatalf("got junior min mood %+v", preset.JuniorMinMood)
	}
	date := domain.Date{Year: domain.YearSenior, Month: 6, Half: 2}
	if entry, ok := preset.PlannedRaces[date]; !ok || entry.Name != "Takarazuka Kinen" {
		t.Fatalf("got planned races %+v", preset.PlannedRaces)
	}
}

func TestLoadParsesUnityCupAdvanced(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	preset, ok := l.Current().PresetByName(scenario.KeyUnityCup, "default")
	if !ok {
		t.Fatal("expected a default Unity Cup preset")
	}
	if preset.UnityCupAdvanced == nil {
		t.Fatal("expected a non-nil advanced block")
	}
	if !preset.UnityCupAdvanced.BurstAllowedStats[domain.StatSPD] {
		t.Fatalf("got burst allow list %+v", preset.UnityCupAdvanced.BurstAllowedStats)
	}
	if preset.UnityCupAdvanced.Weights.BlueSpirit != 10 {
		t.Fatalf("got weights %+v", preset.UnityCupAdvanced.Weights)
	}
	date := domain.Date{Year: domain.YearSenior, Month: 6, Half: 1}
	if name, ok := preset.UnityCupAdvanced.OpponentSelection[date]; !ok || name != "rival_team_a" {
		t.Fatalf("got opponent selection %+v", preset.UnityCupAdvanced.OpponentSelection)
	}
}

func TestReloadSwapsDocumentAtomically(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	updated := sampleYAML + "" // same content, just exercising the reload path
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := l.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if l.Current().General.Hotkey != "F12" {
		t.Fatalf("got hotkey %q after reload", l.Current().General.Hotkey)
	}
}

func TestLoadMissingPresetNameFails(t *testing.T) {
	path := writeConfig(t, `
scenarios:
  ura:
    presets:
      - priority_stats: ["SPD"]
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unnamed preset")
	}
}
