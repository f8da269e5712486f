// Package agent implements the top-level career loop (spec §4.11):
// capture -> detect -> classify -> dispatch -> act -> update memories ->
// log, with patience-based stall detection and hotkey stop handling.
// Grounded in internal/orchestrator.Orchestrator (a coordinator holding
// sub-components with one method per pipeline phase, [ORCH]-tagged
// logging) and cmd/controller/main.go's top-level wiring and
// stdin-driven toggle loop, adapted into a shared stop flag checked at
// the top of every tick (spec §5/§9).
package agent

// #region imports
import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/umaplay/career-agent/internal/bridge"
	"github.com/umaplay/career-agent/internal/catalog"
	"github.com/umaplay/career-agent/internal/decider"
	"github.com/umaplay/career-agent/internal/decisionlog"
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/evaluator"
	"github.com/umaplay/career-agent/internal/memory"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/race"
	"github.com/umaplay/career-agent/internal/scenario"
	"github.com/umaplay/career-agent/internal/skills"
	"github.com/umaplay/career-agent/internal/waiter"
)

// #endregion

// #region config

// Config bundles everything a Loop needs: the live backend, the active
// scenario's wired Policy plus its flow tunables, and the persistent
// stores the loop owns exclusively (spec §5 "Shared resources").
type Config struct {
	Controller ports.Controller
	Perception ports.Perception
	Stop       *atomic.Bool

	Policy scenario.Policy
	Preset domain.Preset

	Catalog      *catalog.Catalog
	SkillMemory  *memory.SkillMemory
	PalMemory    *memory.PalMemory
	PlannedIndex *memory.PlannedRaceIndex

	DecisionLog *decisionlog.Log
	Counters    *decisionlog.Counters

	TrainingBoxes TrainingBoxConfig
	EnergyROI     domain.Box
	EnergyCap     int
	AutoRestMin   int

	// PalClasses names the detection classes that resolve PAL chain state
	// each tick (spec §4.5); read and persisted once per lobby tick via
	// PalMemory.Record/ResetIfAbsent.
	PalClasses PalClassConfig

	// CurrentMood is a placeholder for a real mood-OCR reader (not yet
	// built, analogous to ReadEnergy): it stands in for the trainee's
	// observed mood until one exists, so defaults to the preset's own
	// minimum and the mood safeguard never fires spuriously.
	CurrentMood domain.Mood

	RaceConfig   race.Config
	SkillsConfig skills.Config

	// LobbyActionClasses names the detection class(es) for each non-train
	// lobby action's button, scenario-specific wiring rather than a
	// scoring tunable.
	LobbyActionClasses map[scenario.ActionKind][]string

	// EntityPolicyFor resolves the event-decider policy for an event key
	// (catalog-backed; spec §4.7's per-entity default preference).
	EntityPolicyFor func(eventKey string) decider.EntityPolicy

	// EventKeyFor resolves the current event dialog's catalog key from
	// the captured frame (type/name/attr/rarity/event#step, spec §6).
	EventKeyFor func(frame *domain.Frame) (string, int, bool)

	// EventOptionButtonClasses are the detection classes for the Nth
	// option button, in option order.
	EventOptionButtonClasses [][]string

	// StallThreshold is the configurable consecutive-no-op patience
	// before the loop emits HardFail(stalled) (spec §4.11, e.g. 20).
	StallThreshold int
}

// #endregion

// #region loop

// Loop is the single-threaded tick runner (spec §5: "cooperatively
// single-threaded: one tick at a time, no concurrent state mutation
// inside the core").
type Loop struct {
	cfg    Config
	waiter *waiter.Waiter
	reader *PerceptionReader
	decide *decider.Decider

	consecutiveNoOp int
}

// New wires a Loop: a Waiter over the configured Controller/Perception
// backend (tuned per ControllerKind per bridge.DefaultPollConfigs), a
// PerceptionReader for skill/race/training reads, and a Decider with no
// overrides beyond what the caller configures later via Config.
func New(cfg Config) *Loop {
	pollCfg := bridge.DefaultPollConfigs()[cfg.Controller.ControllerKind()]
	return &Loop{
		cfg:    cfg,
		waiter: waiter.New(cfg.Controller, cfg.Perception, pollCfg, cfg.Stop),
		reader: NewPerceptionReader(cfg.Perception),
		decide: decider.New(nil),
	}
}

// Tick runs one full iteration of the spec §4.11 pipeline.
func (l *Loop) Tick(ctx context.Context) domain.Outcome {
	turnID := uuid.NewString()

	if l.cfg.Stop.Load() {
		return l.finish(turnID, "[agent]", domain.HardFail("hotkey_stop"))
	}

	frame, err := l.waiter.Snap(ctx)
	if err != nil {
		return l.finish(turnID, "[agent]", domain.HardFail("perception_unreachable"))
	}

	classifier := l.cfg.Policy.Classifier()
	screen := classifier.Classify(frame)
	if screen == domain.ScreenUnknown {
		if classifier.ConsecutiveUnknown() >= 1 {
			l.cfg.Counters.IncRelaxedClassification()
		}
		return l.finish(turnID, "[classifier]", l.noOp("unknown_screen"))
	}

	var outcome domain.Outcome
	switch screen {
	case domain.ScreenLobby, domain.ScreenTraining, domain.ScreenInspiration, domain.ScreenKashimotoTeam, domain.ScreenClawGame:
		outcome = l.handleLobby(ctx, frame)
	case domain.ScreenEvent:
		outcome = l.handleEvent(ctx, frame)
	case domain.ScreenSkills:
		outcome = l.handleSkills(ctx)
	case domain.ScreenRaceday:
		outcome = l.handleRace(ctx, frame)
	default:
		outcome = l.noOp(fmt.Sprintf("unhandled_screen:%s", screen))
	}

	l.updateMemories()
	return l.finish(turnID, eventKindFor(screen), outcome)
}

func eventKindFor(screen domain.ScreenLabel) string {
	switch screen {
	case domain.ScreenRaceday:
		return "[race]"
	case domain.ScreenSkills:
		return "[skills]"
	case domain.ScreenEvent:
		return "[event]"
	default:
		return "[agent]"
	}
}

// finish applies the soft-fail-counter/log/stall-check tail shared by every
// tick exit path (spec §4.11 step 5). Memory updates are not part of it:
// Tick calls updateMemories before finish, and only on ticks that reach a
// screen handler.
func (l *Loop) finish(turnID, eventKind string, outcome domain.Outcome) domain.Outcome {
	if outcome.Kind == domain.OutcomeSoftFail {
		l.cfg.Counters.IncSoftFail(outcome.Reason)
	}
	if isNoOp(outcome) {
		l.consecutiveNoOp++
	} else {
		l.consecutiveNoOp = 0
	}

	if l.cfg.DecisionLog != nil {
		if err := l.cfg.DecisionLog.Record(decisionlog.Entry{
			TurnID:    turnID,
			EventKind: eventKind,
			Decision:  string(outcome.Kind),
			Reason:    outcome.Reason,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			log.Printf("%s decision log write failed: %v", eventKind, err)
		}
	}
	log.Printf("%s turn=%s decision=%s reason=%s", eventKind, turnID, outcome.Kind, outcome.Reason)

	if l.cfg.StallThreshold > 0 && l.consecutiveNoOp >= l.cfg.StallThreshold {
		return domain.HardFail("stalled")
	}
	return outcome
}

func isNoOp(o domain.Outcome) bool {
	return o.Kind == domain.OutcomeNoMatch || (o.Kind == domain.OutcomeOK && len(o.Reason) >= 6 && o.Reason[:6] == "no_op:")
}

func (l *Loop) noOp(reason string) domain.Outcome {
	return domain.Outcome{Kind: domain.OutcomeOK, Reason: "no_op:" + reason}
}

// #endregion

// #region handlers

// handleLobby resolves the trainee state, scores training tiles, asks the
// active policy what to do next (spec §4.10's ChooseTrainingAction
// chain), and executes the chosen Action.
func (l *Loop) handleLobby(ctx context.Context, frame *domain.Frame) domain.Outcome {
	energy, err := ReadEnergy(ctx, l.cfg.Perception, frame, l.cfg.EnergyROI)
	if err != nil {
		return domain.SoftFail("energy_read_failed")
	}

	feats, err := ReadTrainingTiles(ctx, l.cfg.Perception, l.cfg.TrainingBoxes, frame)
	if err != nil {
		return domain.SoftFail("training_tile_read_failed")
	}

	iconPresent, chainStep, nextStepYieldsEnergy := ReadPalState(frame, l.cfg.PalClasses)

	palYieldsEnergy := false
	if l.cfg.PalMemory != nil {
		scenarioKey := string(l.cfg.Policy.Key())
		if iconPresent {
			if err := l.cfg.PalMemory.Record(scenarioKey, iconPresent, chainStep, nextStepYieldsEnergy); err != nil {
				log.Printf("[pal] record failed: %v", err)
			}
		} else if err := l.cfg.PalMemory.ResetIfAbsent(scenarioKey, iconPresent); err != nil {
			log.Printf("[pal] reset failed: %v", err)
		}
		palYieldsEnergy, _ = l.cfg.PalMemory.AnyNextEnergy(scenarioKey)
	}

	state := scenario.State{
		Mood:                    l.cfg.CurrentMood,
		Energy:                  energy,
		EnergyCap:               l.cfg.EnergyCap,
		AutoRestMinEnergy:       l.cfg.AutoRestMin,
		PalIconPresent:          iconPresent,
		PalNextStepYieldsEnergy: palYieldsEnergy,
		Preset:                 l.cfg.Preset,
	}

	weights := l.cfg.Policy.Weights()
	if adv := l.cfg.Preset.UnityCupAdvanced; adv != nil && l.cfg.Policy.Key() == scenario.KeyUnityCup {
		weights = adv.Weights
	}
	eval := evaluator.New(weights, l.cfg.Policy.EvaluatorConfig(), l.cfg.SkillMemory)
	scoreCtx := evaluator.ScoreContext{IsUnityCup: l.cfg.Policy.Key() == scenario.KeyUnityCup}
	scored := eval.Score(scoreCtx, feats, l.cfg.Preset.TargetStats, l.cfg.Preset.TargetStats, l.cfg.Preset)

	action := l.cfg.Policy.OnLobby(state, scored)
	return l.act(ctx, action)
}

// act executes a scenario.Action: clicking the training tile's own box for
// ActionTrain, or the configured button classes for every other kind.
func (l *Loop) act(ctx context.Context, action scenario.Action) domain.Outcome {
	switch action.Kind {
	case scenario.ActionNoOp:
		return l.noOp(action.Reason)
	case scenario.ActionTrain:
		if action.Tile == nil {
			return domain.SoftFail("train_action_missing_tile")
		}
		cx := (action.Tile.Box.X1 + action.Tile.Box.X2) / 2
		cy := (action.Tile.Box.Y1 + action.Tile.Box.Y2) / 2
		if err := l.cfg.Controller.Click(ctx, cx, cy); err != nil {
			return domain.SoftFail("train_click_failed")
		}
		return domain.Ok
	case scenario.ActionSkills:
		return l.handleSkills(ctx)
	default:
		classes, ok := l.cfg.LobbyActionClasses[action.Kind]
		if !ok || len(classes) == 0 {
			return domain.SoftFail(fmt.Sprintf("no_button_classes:%s", action.Kind))
		}
		return l.waiter.ClickWhen(ctx, classes, nil, nil, 0.5, false, true, l.cfg.RaceConfig.StepTimeout)
	}
}

// handleEvent resolves the dialog's catalog options and defers to the
// decider for the final choice (spec §4.7), clicking the chosen option's
// button.
func (l *Loop) handleEvent(ctx context.Context, frame *domain.Frame) domain.Outcome {
	if l.cfg.EventKeyFor == nil || l.cfg.Catalog == nil {
		return domain.SoftFail("event_not_configured")
	}
	key, step, ok := l.cfg.EventKeyFor(frame)
	if !ok {
		return domain.SoftFail("event_key_unresolved")
	}
	options, ok := l.cfg.Catalog.EventOptions(key)
	if !ok || len(options) == 0 {
		return domain.SoftFail("event_catalog_miss")
	}

	energy, err := ReadEnergy(ctx, l.cfg.Perception, frame, l.cfg.EnergyROI)
	if err != nil {
		return domain.SoftFail("energy_read_failed")
	}

	var policy decider.EntityPolicy
	if l.cfg.EntityPolicyFor != nil {
		policy = l.cfg.EntityPolicyFor(key)
	}

	idx, reason := l.decide.Choose(key, step, options, energy, l.cfg.EnergyCap, policy)
	if idx < 0 || idx >= len(l.cfg.EventOptionButtonClasses) {
		return domain.SoftFail("event_option_out_of_range")
	}
	classes := l.cfg.EventOptionButtonClasses[idx]
	outcome := l.waiter.ClickWhen(ctx, classes, nil, nil, 0.5, false, true, l.cfg.RaceConfig.StepTimeout)
	if !outcome.IsOK() {
		return outcome
	}
	log.Printf("[event] key=%s step=%d chose=%d reason=%s", key, step, idx, reason)
	return domain.Ok
}

// handleSkills runs the skills-shop flow to completion.
func (l *Loop) handleSkills(ctx context.Context) domain.Outcome {
	flow := skills.New(l.waiter, l.cfg.SkillMemory, l.reader, l.cfg.SkillsConfig)
	return flow.Run(ctx)
}

// handleRace runs one raceday attempt, looking up the catalog's recorded
// kind for the date to resolve goal-race retry behavior (DESIGN.md Open
// Question #2).
func (l *Loop) handleRace(ctx context.Context, frame *domain.Frame) domain.Outcome {
	entry, hasPlanned, err := l.cfg.PlannedIndex.RaceFor(dateFromPreset(l.cfg.Preset))
	if err != nil {
		return domain.SoftFail("planned_race_lookup_failed")
	}
	date := dateFromPreset(l.cfg.Preset)
	isGoal := false
	if l.cfg.Catalog != nil {
		if kind, ok := l.cfg.Catalog.RaceKindFor(date); ok {
			isGoal = kind == catalog.RaceKindGoal
		}
	}

	flow := race.New(l.waiter, l.cfg.PlannedIndex, l.reader, l.reader, l.cfg.RaceConfig)
	params := race.RunParams{
		Date:                 date,
		Preset:               l.cfg.Preset,
		InsideRacedayAlready: true,
		IsDebut:              false,
		IsGoalRace:           isGoal,
		TryAgainOnFailedGoal: isGoal,
	}
	if hasPlanned {
		params.Preset.PlannedRaces = map[domain.Date]domain.PlannedRaceEntry{date: entry}
	}
	return flow.Run(ctx, params)
}

// dateFromPreset is a placeholder until the perception-backed date OCR
// reader lands; it reads the earliest scheduled planned race's date as the
// current date proxy, since every race screen the loop reaches corresponds
// to an entry the preset scheduled.
func dateFromPreset(preset domain.Preset) domain.Date {
	var best domain.Date
	first := true
	for d := range preset.PlannedRaces {
		if first || d.Compare(best) < 0 {
			best = d
			first = false
		}
	}
	return best
}

// updateMemories ticks the planned-race cooldown table (spec §4.11 step
// 4); skill and PAL memory are written synchronously inside their own
// flows (skills.Flow, and the PAL icon reader at handleLobby time) rather
// than here, matching spec §5's write-through rule.
func (l *Loop) updateMemories() {
	if l.cfg.PlannedIndex != nil {
		if err := l.cfg.PlannedIndex.Tick(); err != nil {
			log.Printf("[planned_race] cooldown tick failed: %v", err)
		}
	}
}

func hasClass(frame *domain.Frame, class string) bool {
	for _, d := range frame.Detections {
		if d.Class == class {
			return true
		}
	}
	return false
}

// #endregion
