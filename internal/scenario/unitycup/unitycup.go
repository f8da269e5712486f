// Package unitycup implements scenario.Policy for the Unity Cup scenario:
// a classifier rule table that adds the KashimotoTeam and ClawGame screens
// (spec §3), default white/blue-spirit-aware evaluator weights, and an
// opponent-selection lookup for the scenario's advanced preset block.
// Grounded in internal/orchestrator/strategy.go's Strategies map, the same
// way internal/scenario/ura is.
package unitycup

// #region imports
import (
	"github.com/umaplay/career-agent/internal/classifier"
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/evaluator"
	"github.com/umaplay/career-agent/internal/scenario"
)

// #endregion

// #region classifier-rules

const patienceThreshold = 5

const (
	classEventDialog       = "event_dialog"
	classSkillsShopHeader  = "skills_shop_header"
	classInspirationBanner = "inspiration_banner"
	classTrainingTile      = "training_tile"
	classRacedayBanner     = "race_day_banner"
	classRaceButton        = "race_button"
	classLobbyMenuBar      = "lobby_menu_bar"
	classKashimotoHeader   = "kashimoto_team_header"
	classClawGameBanner    = "claw_game_banner"
)

func rules() []classifier.Rule {
	return []classifier.Rule{
		{Label: domain.ScreenEvent, Classes: []string{classEventDialog}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenSkills, Classes: []string{classSkillsShopHeader}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenInspiration, Classes: []string{classInspirationBanner}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenKashimotoTeam, Classes: []string{classKashimotoHeader}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenClawGame, Classes: []string{classClawGameBanner}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenTraining, Classes: []string{classTrainingTile}, PrimaryConf: 0.55, RelaxedConf: 0.35},
		{Label: domain.ScreenRaceday, Classes: []string{classRacedayBanner, classRaceButton}, PrimaryConf: 0.55, RelaxedConf: 0.35},
		{Label: domain.ScreenLobby, Classes: []string{classLobbyMenuBar}, PrimaryConf: 0.5, RelaxedConf: 0.3},
	}
}

// #endregion

// #region weights

// DefaultWeights are Unity Cup's scenario-default weights (spec §4.6),
// used only when a preset carries no UnityCupAdvanced.Weights override.
func DefaultWeights() domain.ScoreWeights {
	return domain.ScoreWeights{
		Rainbow:            12,
		WhiteSpiritFill:    4,
		WhiteSpiritExplode: 6,
		WhiteCombo:         3,
		BlueSpirit:         10,
		BlueCombo:          4,
		RainbowCombo:       4,
		Hint:               3,
	}
}

// #endregion

// #region policy

// Policy is Unity Cup's scenario.Policy implementation.
type Policy struct {
	classifier *classifier.Classifier
	weights    domain.ScoreWeights
	evalConfig evaluator.Config
}

// New builds the Unity Cup policy with its classifier rule table and
// default weights/evaluator tuning. A preset carrying UnityCupAdvanced
// overrides Weights() at the evaluator-construction call site (spec §4.6:
// "weights come from preset.unityCupAdvanced for Unity Cup").
func New() *Policy {
	return &Policy{
		classifier: classifier.New(rules(), patienceThreshold),
		weights:    DefaultWeights(),
		evalConfig: evaluator.DefaultConfig(),
	}
}

func (p *Policy) Key() scenario.Key                 { return scenario.KeyUnityCup }
func (p *Policy) Classifier() *classifier.Classifier { return p.classifier }
func (p *Policy) Weights() domain.ScoreWeights       { return p.weights }
func (p *Policy) EvaluatorConfig() evaluator.Config  { return p.evalConfig }

// OnLobby runs the shared training-or-rest-or-race decision chain; the
// evaluator.ScoredTile values already reflect Unity Cup's burst allow-list
// filtering (spec §8) by the time they reach here.
func (p *Policy) OnLobby(state scenario.State, scored []evaluator.ScoredTile) scenario.Action {
	return scenario.ChooseTrainingAction(state, scored)
}

// ChooseTrainingAction is the same decision chain, exposed separately per
// the scenario.Policy interface.
func (p *Policy) ChooseTrainingAction(state scenario.State, scored []evaluator.ScoredTile) scenario.Action {
	return scenario.ChooseTrainingAction(state, scored)
}

// #endregion

// #region opponent-selection

// OpponentFor resolves the configured opponent for a race slot date from
// the preset's advanced block, per spec §3's "opponent selection per race
// slot". Returns false when the preset carries no Unity Cup advanced block
// or no entry for date.
func OpponentFor(preset domain.Preset, date domain.Date) (string, bool) {
	if preset.UnityCupAdvanced == nil {
		return "", false
	}
	name, ok := preset.UnityCupAdvanced.OpponentSelection[date]
	return name, ok
}

// #endregion
