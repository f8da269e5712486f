// Package config loads the YAML configuration document named in spec §6 and
// §9: a `general` block of agent-wide tunables plus a `scenarios.<key>`
// block of preset lists, one per registered scenario.Key. Grounded in
// aurel42-phileasgo/pkg/config's Load/yaml.Unmarshal-into-defaults pattern,
// adapted so presets deserialize into raw DTOs first and convert into
// domain.Preset values, since domain.Preset carries maps keyed by
// domain.Date/domain.StatKey that don't round-trip through YAML directly.
package config

// #region imports
import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/scenario"
)

// #endregion

// #region general

// General holds the agent-wide tunables under the `general` YAML key
// (spec §6: hotkey, debug, auto-rest minimum, undertrain threshold, top
// stats focus, skill-check interval, skill-pts delta, scenario selection,
// controller mode, scenario-confirmed flag).
type General struct {
	Hotkey                 string   `yaml:"hotkey"`
	Debug                  bool     `yaml:"debug"`
	AutoRestMinEnergy      int      `yaml:"auto_rest_min_energy"`
	UndertrainThreshold    int      `yaml:"undertrain_threshold"`
	TopStatsFocus          []string `yaml:"top_stats_focus"`
	SkillCheckIntervalTurn int      `yaml:"skill_check_interval_turns"`
	SkillPtsDeltaThreshold int      `yaml:"skill_pts_delta_threshold"`
	Scenario               string   `yaml:"scenario"`
	ControllerKind         string   `yaml:"controller_kind"`
	ScenarioConfirmed      bool     `yaml:"scenario_confirmed"`
}

// ControllerKindValue parses ControllerKind into a ports.ControllerKind,
// defaulting to ports.ControllerDesktop when unset or unrecognized.
func (g General) ControllerKindValue() ports.ControllerKind {
	switch ports.ControllerKind(g.ControllerKind) {
	case ports.ControllerDesktop, ports.ControllerDeviceMirroring, ports.ControllerRemoteBridge, ports.ControllerFixture:
		return ports.ControllerKind(g.ControllerKind)
	default:
		return ports.ControllerDesktop
	}
}

// ScenarioKey parses Scenario into a scenario.Key.
func (g General) ScenarioKey() scenario.Key {
	return scenario.Key(g.Scenario)
}

// #endregion

// #region raw document

type rawDocument struct {
	General   General                      `yaml:"general"`
	Scenarios map[string]rawScenarioBlock `yaml:"scenarios"`
}

type rawScenarioBlock struct {
	Presets []rawPreset `yaml:"presets"`
}

type rawDate struct {
	Year  int `yaml:"year"`
	Month int `yaml:"month"`
	Half  int `yaml:"half"`
}

func (d rawDate) toDomain() domain.Date {
	return domain.Date{Year: domain.YearCode(d.Year), Month: d.Month, Half: d.Half}
}

type rawStyleScheduleEntry struct {
	From  rawDate `yaml:"from"`
	Style string  `yaml:"style"`
}

type rawPlannedRace struct {
	Date      rawDate `yaml:"date"`
	Name      string  `yaml:"name"`
	Tentative bool    `yaml:"tentative"`
}

type rawWeights struct {
	Rainbow            float64 `yaml:"rainbow"`
	WhiteSpiritFill    float64 `yaml:"white_spirit_fill"`
	WhiteSpiritExplode float64 `yaml:"white_spirit_explode"`
	WhiteCombo         float64 `yaml:"white_combo"`
	BlueSpirit         float64 `yaml:"blue_spirit"`
	BlueCombo          float64 `yaml:"blue_combo"`
	RainbowCombo       float64 `yaml:"rainbow_combo"`
	Hint               float64 `yaml:"hint"`
}

func (w rawWeights) toDomain() domain.ScoreWeights {
	return domain.ScoreWeights{
		Rainbow:            w.Rainbow,
		WhiteSpiritFill:    w.WhiteSpiritFill,
		WhiteSpiritExplode: w.WhiteSpiritExplode,
		WhiteCombo:         w.WhiteCombo,
		BlueSpirit:         w.BlueSpirit,
		BlueCombo:          w.BlueCombo,
		RainbowCombo:       w.RainbowCombo,
		Hint:               w.Hint,
	}
}

type rawOpponentSlot struct {
	Date     rawDate `yaml:"date"`
	Opponent string  `yaml:"opponent"`
}

type rawSeasonalMultiplier struct {
	Year       int     `yaml:"year"`
	Multiplier float64 `yaml:"multiplier"`
}

type rawUnityCupAdvanced struct {
	BurstAllowedStats  []string                `yaml:"burst_allowed_stats"`
	Weights            rawWeights              `yaml:"weights"`
	SeasonalMultiplier []rawSeasonalMultiplier `yaml:"seasonal_multiplier"`
	OpponentSelection  []rawOpponentSlot       `yaml:"opponent_selection"`
}

func (u rawUnityCupAdvanced) toDomain() *domain.UnityCupAdvanced {
	burst := make(map[domain.StatKey]bool, len(u.BurstAllowedStats))
	for _, s := range u.BurstAllowedStats {
		burst[domain.StatKey(s)] = true
	}
	seasonal := make(map[domain.YearCode]float64, len(u.SeasonalMultiplier))
	for _, s := range u.SeasonalMultiplier {
		seasonal[domain.YearCode(s.Year)] = s.Multiplier
	}
	opponents := make(map[domain.Date]string, len(u.OpponentSelection))
	for _, o := range u.OpponentSelection {
		opponents[o.Date.toDomain()] = o.Opponent
	}
	return &domain.UnityCupAdvanced{
		BurstAllowedStats:  burst,
		Weights:            u.Weights.toDomain(),
		SeasonalMultiplier: seasonal,
		OpponentSelection:  opponents,
	}
}

type rawPreset struct {
	Name                 string                  `yaml:"name"`
	PriorityStats        []string                `yaml:"priority_stats"`
	TargetStats          map[string]int          `yaml:"target_stats"`
	MinMood              string                  `yaml:"min_mood"`
	JuniorMinMood        string                  `yaml:"junior_min_mood"`
	DebutStyle           string                  `yaml:"debut_style"`
	StyleSchedule        []rawStyleScheduleEntry `yaml:"style_schedule"`
	SkillsToBuy          []string                `yaml:"skills_to_buy"`
	PlannedRaces         []rawPlannedRace        `yaml:"planned_races"`
	RaceIfNoGoodValue    bool                    `yaml:"race_if_no_good_value"`
	WeakTurnSVThreshold  float64                 `yaml:"weak_turn_sv_threshold"`
	RacePrecheckSV       float64                 `yaml:"race_precheck_sv"`
	LobbyPrecheckEnabled bool                    `yaml:"lobby_precheck_enabled"`
	GoalRaceForceTurns   int                     `yaml:"goal_race_force_turns"`
	UnityCupAdvanced     *rawUnityCupAdvanced    `yaml:"unity_cup_advanced"`
}

var moodByName = map[string]domain.Mood{
	"awful":  domain.MoodAwful,
	"bad":    domain.MoodBad,
	"normal": domain.MoodNormal,
	"good":   domain.MoodGood,
	"great":  domain.MoodGreat,
}

func parseMood(s string) domain.Mood {
	m, ok := moodByName[s]
	if !ok {
		return domain.MoodNormal
	}
	return m
}

func (p rawPreset) toDomain() (domain.Preset, error) {
	if p.Name == "" {
		return domain.Preset{}, fmt.Errorf("config: preset missing name")
	}

	priority := make([]domain.StatKey, len(p.PriorityStats))
	for i, s := range p.PriorityStats {
		priority[i] = domain.StatKey(s)
	}

	target := make(domain.StatVector, len(p.TargetStats))
	for k, v := range p.TargetStats {
		target[domain.StatKey(k)] = v
	}

	schedule := make([]domain.StyleScheduleEntry, len(p.StyleSchedule))
	for i, e := range p.StyleSchedule {
		schedule[i] = domain.StyleScheduleEntry{From: e.From.toDomain(), Style: domain.Style(e.Style)}
	}

	planned := make(map[domain.Date]domain.PlannedRaceEntry, len(p.PlannedRaces))
	for _, r := range p.PlannedRaces {
		planned[r.Date.toDomain()] = domain.PlannedRaceEntry{Name: r.Name, Tentative: r.Tentative}
	}

	var juniorMinMood *domain.Mood
	if p.JuniorMinMood != "" {
		m := parseMood(p.JuniorMinMood)
		juniorMinMood = &m
	}

	var advanced *domain.UnityCupAdvanced
	if p.UnityCupAdvanced != nil {
		advanced = p.UnityCupAdvanced.toDomain()
	}

	return domain.Preset{
		Name:                 p.Name,
		PriorityStats:        priority,
		TargetStats:          target,
		MinMood:              parseMood(p.MinMood),
		JuniorMinMood:        juniorMinMood,
		DebutStyle:           domain.Style(p.DebutStyle),
		StyleSchedule:        schedule,
		SkillsToBuy:          p.SkillsToBuy,
		PlannedRaces:         planned,
		RaceIfNoGoodValue:    p.RaceIfNoGoodValue,
		WeakTurnSVThreshold:  p.WeakTurnSVThreshold,
		RacePrecheckSV:       p.RacePrecheckSV,
		LobbyPrecheckEnabled: p.LobbyPrecheckEnabled,
		GoalRaceForceTurns:   p.GoalRaceForceTurns,
		UnityCupAdvanced:     advanced,
	}, nil
}

// #endregion

// #region document

// Document is the parsed, converted configuration: General tunables plus
// each scenario's preset list, ready for lookup by scenario.Key.
type Document struct {
	General General
	Presets map[scenario.Key][]domain.Preset
}

// PresetByName returns the first preset named name under key. The match is
// on name alone; general.scenario_confirmed is not consulted here.
func (d *Document) PresetByName(key scenario.Key, name string) (domain.Preset, bool) {
	for _, p := range d.Presets[key] {
		if p.Name == name {
			return p, true
		}
	}
	return domain.Preset{}, false
}

func parseDocument(data []byte) (*Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	presets := make(map[scenario.Key][]domain.Preset, len(raw.Scenarios))
	for key, block := range raw.Scenarios {
		list := make([]domain.Preset, 0, len(block.Presets))
		for _, rp := range block.Presets {
			preset, err := rp.toDomain()
			if err != nil {
				return nil, fmt.Errorf("config: scenario %q: %w", key, err)
			}
			list = append(list, preset)
		}
		presets[scenario.Key(key)] = list
	}

	return &Document{General: raw.General, Presets: presets}, nil
}

// #endregion

// #region loader

// Loader holds the config file path and the current Document behind an
// atomic pointer (spec §9: global config state is loaded/stored
// atomically so a Reload mid-tick never hands a reader a half-written
// document).
type Loader struct {
	path    string
	current atomic.Pointer[Document]
}

// Load reads and parses path, returning a Loader primed with the initial
// Document.
func Load(path string) (*Loader, error) {
	l := &Loader{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads the backing file and atomically swaps in the freshly
// parsed Document. On parse failure the previously loaded Document, if
// any, remains in effect.
func (l *Loader) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", l.path, err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return err
	}
	l.current.Store(doc)
	return nil
}

// Current returns the most recently loaded Document.
func (l *Loader) Current() *Document {
	return l.current.Load()
}

// #endregion
