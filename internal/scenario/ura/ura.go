// Package ura implements scenario.Policy for the URA Finale scenario: the
// classifier rule table, default evaluator weights/config, and the shared
// training-or-rest-or-race decision chain from internal/scenario (spec
// §4.10). Grounded in internal/orchestrator/strategy.go's Strategies map
// entries (each a named config value returned by a constructor), here one
// concrete scenario config instead of six strategy configs.
package ura

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

// classes names the detection vocabulary this scenario's classifier rule
// table keys on. URA has no KashimotoTeam/ClawGame screens (Unity-Cup-only
// per spec §3).
const (
	classEventDialog      = "event_dialog"
	classSkillsShopHeader = "skills_shop_header"
	classInspirationBanner = "inspiration_banner"
	classTrainingTile     = "training_tile"
	classRacedayBanner    = "race_day_banner"
	classRaceButton       = "race_button"
	classLobbyMenuBar     = "lobby_menu_bar"
)

func rules() []classifier.Rule {
	return []classifier.Rule{
		{Label: domain.ScreenEvent, Classes: []string{classEventDialog}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenSkills, Classes: []string{classSkillsShopHeader}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenInspiration, Classes: []string{classInspirationBanner}, PrimaryConf: 0.6, RelaxedConf: 0.4},
		{Label: domain.ScreenTraining, Classes: []string{classTrainingTile}, PrimaryConf: 0.55, RelaxedConf: 0.35},
		{Label: domain.ScreenRaceday, Classes: []string{classRacedayBanner, classRaceButton}, PrimaryConf: 0.55, RelaxedConf: 0.35},
		{Label: domain.ScreenLobby, Classes: []string{classLobbyMenuBar}, PrimaryConf: 0.5, RelaxedConf: 0.3},
	}
}

// #endregion

// #region weights

// DefaultWeights are URA's scenario-default scoring weights (spec §4.6):
// URA has no white/blue spirit mechanic, so those weights are zero and
// rainbow/hint dominate the score.
func DefaultWeights() domain.ScoreWeights {
	return domain.ScoreWeights{
		Rainbow:      15,
		RainbowCombo: 5,
		Hint:         3,
	}
}

// #endregion

// #region policy

// Policy is URA's scenario.Policy implementation.
type Policy struct {
	classifier *classifier.Classifier
	weights    domain.ScoreWeights
	evalConfig evaluator.Config
}

// New builds the URA policy with its classifier rule table and default
// weights/evaluator tuning.
func New() *Policy {
	return &Policy{
		classifier: classifier.New(rules(), patienceThreshold),
		weights:    DefaultWeights(),
		evalConfig: evaluator.DefaultConfig(),
	}
}

func (p *Policy) Key() scenario.Key                        { return scenario.KeyURA }
func (p *Policy) Classifier() *classifier.Classifier        { return p.classifier }
func (p *Policy) Weights() domain.ScoreWeights              { return p.weights }
func (p *Policy) EvaluatorConfig() evaluator.Config         { return p.evalConfig }

// OnLobby runs the shared training-or-rest-or-race decision chain. URA has
// no scenario-specific lobby override beyond what scenario.ChooseTrainingAction
// already implements.
func (p *Policy) OnLobby(state scenario.State, scored []evaluator.ScoredTile) scenario.Action {
	return scenario.ChooseTrainingAction(state, scored)
}

// ChooseTrainingAction is the same decision chain, exposed separately per
// the scenario.Policy interface (spec §4.10 names both entrypoints).
func (p *Policy) ChooseTrainingAction(state scenario.State, scored []evaluator.ScoredTile) scenario.Action {
	return scenario.ChooseTrainingAction(state, scored)
}

// #endregion
