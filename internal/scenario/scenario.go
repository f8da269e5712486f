// Package scenario holds the scenario registry and the Policy interface
// (spec §4.10): a small table keyed by scenario key, not runtime duck
// typing. Grounded in internal/orchestrator/strategy.go's Strategies map +
// defaultMapping (a table of concrete configs looked up by enum, selected
// through a thin selector type) — here the table holds Policy
// implementations instead of StrategyConfig values.
package scenario

// #region imports
import (
	"fmt"

	"github.com/umaplay/career-agent/internal/classifier"
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/evaluator"
	"github.com/umaplay/career-agent/internal/tiles"
)

// #endregion

// #region key

// Key identifies a scenario. Unlike ScreenLabel this is closed only by
// convention: new scenarios register their own Key value.
type Key string

const (
	KeyURA       Key = "ura"
	KeyUnityCup  Key = "unity_cup"
)

// #endregion

// #region action

// ActionKind enumerates what the agent loop does after a policy decision.
type ActionKind string

const (
	ActionTrain     ActionKind = "train"
	ActionRace      ActionKind = "race"
	ActionRest      ActionKind = "rest"
	ActionRecreate  ActionKind = "recreate"
	ActionInfirmary ActionKind = "infirmary"
	ActionSkills    ActionKind = "skills"
	ActionNoOp      ActionKind = "no_op"
)

// Action is a policy's decision for the current tick.
type Action struct {
	Kind   ActionKind
	Tile   *tiles.Features // set when Kind == ActionTrain
	Reason string
}

// #endregion

// #region state

// State is everything a policy needs to decide without reaching back into
// the agent loop or memory managers directly.
type State struct {
	Date              domain.Date
	Mood              domain.Mood
	Energy            int
	EnergyCap         int
	AutoRestMinEnergy int
	CurrentStats      domain.StatVector
	Preset            domain.Preset

	PalIconPresent          bool
	PalNextStepYieldsEnergy bool // resolved from memory.PalMemory.AnyNextEnergy by the agent loop
	TurnsToSummer           int  // turns remaining until the next summer camp, for the low-energy safeguard
	LowEnergyThreshold      int  // energy at/below which the summer safeguard treats the trainee as "low energy"

	IsMandatoryGoalRace      bool
	TurnsToMandatoryGoalRace int
}

// #endregion

// #region policy

// Policy is one scenario's classify/handle/score behavior. Implementations
// live in scenario/ura and scenario/unitycup.
type Policy interface {
	Key() Key
	Classifier() *classifier.Classifier
	OnLobby(state State, scored []evaluator.ScoredTile) Action
	ChooseTrainingAction(state State, scored []evaluator.ScoredTile) Action
	Weights() domain.ScoreWeights
	EvaluatorConfig() evaluator.Config
}

// #endregion

// #region registry

// Registry maps a Key to its Policy, the table mandated by spec §4.10
// ("a scenario registry maps a scenario key to a policy object").
type Registry struct {
	policies map[Key]Policy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{policies: map[Key]Policy{}}
}

// Register adds or replaces the policy for key.
func (r *Registry) Register(policy Policy) {
	r.policies[policy.Key()] = policy
}

// Lookup returns the policy for key, or an error if none is registered —
// scenario dispatch is a table lookup, never a type switch.
func (r *Registry) Lookup(key Key) (Policy, error) {
	p, ok := r.policies[key]
	if !ok {
		return nil, fmt.Errorf("scenario: no policy registered for key %q", key)
	}
	return p, nil
}

// #endregion
