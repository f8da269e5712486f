// Package race implements the 8-state raceday flow (spec §4.9):
// EnsureRaceday -> PickRaceSquare -> ClickRaceButton -> PreLobbyGate ->
// SetStrategy -> RunRace -> PostRaceLobby -> LossRetry. Grounded in
// internal/replay/harness.go's stepwise pipeline (each stage consumes the
// previous stage's result and produces a typed outcome), rewritten from a
// pure fold over recorded interactions into a stateful, Waiter-driven
// sequence over live UI state.
package race

// #region imports
import (
	"context"
	"log"
	"time"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/matcher"
	"github.com/umaplay/career-agent/internal/memory"
	"github.com/umaplay/career-agent/internal/waiter"
)

// #endregion

// #region types

// Square is one candidate race square resolved from a captured frame.
type Square struct {
	Title       string
	Stars       int
	Recommended bool
	Box         domain.Box
}

// SquareReader resolves the race squares visible in the raceday view.
type SquareReader interface {
	ReadSquares(ctx context.Context, frame *domain.Frame) ([]Square, error)
}

// ResultReader distinguishes an active "View Results" affordance from a
// greyed-out one, and reports whether a loss marker is present once results
// are shown.
type ResultReader interface {
	ViewResultsActive(ctx context.Context, frame *domain.Frame) (bool, domain.Box, error)
	LossDetected(ctx context.Context, frame *domain.Frame) (bool, error)
}

// Config names the detection classes and tunables for every stage. Every
// field is scenario-specific wiring, not a score weight.
type Config struct {
	RacedayMarkerClasses     []string
	RacedayNavClasses        []string
	ConsecutiveDialogClasses []string
	AcceptConsecutiveClasses []string
	RefuseConsecutiveClasses []string
	AcceptConsecutivePenalty bool

	RaceButtonClasses     []string
	RaceButtonForbidTexts []string

	StrategyAffordanceClasses []string
	StrategyButtonClasses     []string
	StyleOptionClasses        []string

	RunRaceConfirmClasses []string

	NextButtonClasses           []string
	RaceAfterNextButtonClasses  []string
	TryAgainButtonClasses       []string
	AlarmClockCloseClasses      []string
	ContinueWithoutRetryClasses []string

	StarThreshold    int
	SkipCooldown     int
	MaxLossRetries   int
	StepTimeout      time.Duration
	DialogProbeDelay time.Duration
}

// #endregion

// #region flow

// Flow runs the race state machine for one raceday entry. The applied style
// is kept in the Flow's own lastAppliedStyle field, so it carries over only
// between Runs of the same Flow value; planned-race cooldowns are held in
// memory.PlannedRaceIndex.
type Flow struct {
	Waiter       *waiter.Waiter
	PlannedIndex *memory.PlannedRaceIndex
	Squares      SquareReader
	Results      ResultReader
	Config       Config

	lastAppliedStyle *domain.Style
}

// New builds a Flow.
func New(w *waiter.Waiter, planned *memory.PlannedRaceIndex, squares SquareReader, results ResultReader, cfg Config) *Flow {
	return &Flow{Waiter: w, PlannedIndex: planned, Squares: squares, Results: results, Config: cfg}
}

// Run executes the full state machine for a single race attempt. Outcomes
// are domain.Ok, or domain.SoftFail with reason one of "no_race_found",
// "no_planned_match", "buttons_missing", "consecutive_race_refused",
// "capture_error", "read_error", "memory_error", "click_error", or
// domain.HardFail("loss_loop"). A Waiter abort surfaces as the failing
// step's own reason (e.g. "buttons_missing"), not as "aborted".
func (f *Flow) Run(ctx context.Context, params RunParams) domain.Outcome {
	if outcome := f.ensureRaceday(ctx, params.InsideRacedayAlready); !outcome.IsOK() {
		return outcome
	}

	square, outcome := f.pickRaceSquare(ctx, params.Date)
	if !outcome.IsOK() {
		return outcome
	}

	if outcome := f.clickRaceButton(ctx, square); !outcome.IsOK() {
		return outcome
	}

	if outcome := f.preLobbyGate(ctx); !outcome.IsOK() {
		return outcome
	}

	if outcome := f.setStrategy(ctx, params.Date, params.Preset, params.IsDebut); !outcome.IsOK() {
		return outcome
	}

	if outcome := f.runRace(ctx); !outcome.IsOK() {
		return outcome
	}

	return f.resolvePostRace(ctx, params, 0)
}

// RunParams bundles the per-attempt inputs Run needs from the caller.
type RunParams struct {
	Date                  domain.Date
	Preset                domain.Preset
	InsideRacedayAlready  bool
	IsDebut               bool
	IsGoalRace            bool
	TryAgainOnFailedGoal  bool
}

// #endregion

// #region 1-ensure-raceday

func (f *Flow) ensureRaceday(ctx context.Context, insideAlready bool) domain.Outcome {
	if !insideAlready {
		if _, outcome := f.Waiter.Seen(ctx, f.Config.RacedayMarkerClasses, 0.5, nil, nil, f.Config.StepTimeout); !outcome.IsOK() {
			f.Waiter.TryClickOnce(ctx, f.Config.RacedayNavClasses, 0.5)
			if _, outcome2 := f.Waiter.Seen(ctx, f.Config.RacedayMarkerClasses, 0.5, nil, nil, f.Config.StepTimeout); !outcome2.IsOK() {
				return domain.SoftFail("no_race_found")
			}
		}
	}

	if _, outcome := f.Waiter.Seen(ctx, f.Config.ConsecutiveDialogClasses, 0.5, nil, nil, f.Config.DialogProbeDelay); outcome.IsOK() {
		if insideAlready || f.Config.AcceptConsecutivePenalty {
			if outcome := f.Waiter.ClickWhen(ctx, f.Config.AcceptConsecutiveClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
				return domain.SoftFail("buttons_missing")
			}
			return domain.Ok
		}
		f.Waiter.ClickWhen(ctx, f.Config.RefuseConsecutiveClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout)
		return domain.SoftFail("consecutive_race_refused")
	}

	return domain.Ok
}

// #endregion

// #region 2-pick-race-square

func (f *Flow) pickRaceSquare(ctx context.Context, date domain.Date) (Square, domain.Outcome) {
	frame, err := f.Waiter.Snap(ctx)
	if err != nil {
		return Square{}, domain.SoftFail("capture_error")
	}
	squares, err := f.Squares.ReadSquares(ctx, frame)
	if err != nil {
		return Square{}, domain.SoftFail("read_error")
	}

	planned, ok, err := f.PlannedIndex.RaceFor(date)
	if err != nil {
		return Square{}, domain.SoftFail("memory_error")
	}
	if ok {
		for _, sq := range squares {
			if titleMatches(planned.Name, sq.Title) {
				return sq, domain.Ok
			}
		}
		if err := f.PlannedIndex.MarkSkipped(date, f.Config.SkipCooldown); err != nil {
			log.Printf("[race] failed to mark planned race skipped for %s: %v", date, err)
		}
		return Square{}, domain.SoftFail("no_planned_match")
	}

	var best *Square
	for i := range squares {
		sq := &squares[i]
		if !sq.Recommended && sq.Stars < f.Config.StarThreshold {
			continue
		}
		if best == nil || sq.Stars > best.Stars {
			best = sq
		}
	}
	if best == nil {
		return Square{}, domain.SoftFail("no_race_found")
	}
	return *best, domain.Ok
}

// titleMatches reports whether every token of want appears among got's
// tokens, tolerating punctuation/casing differences from OCR noise.
func titleMatches(want, got string) bool {
	wantTokens := matcher.Tokenize(want)
	gotSet := make(map[string]bool)
	for _, t := range matcher.Tokenize(got) {
		gotSet[t] = true
	}
	for _, t := range wantTokens {
		if !gotSet[t] {
			return false
		}
	}
	return len(wantTokens) > 0
}

// #endregion

// #region 3-click-race-button

func (f *Flow) clickRaceButton(ctx context.Context, square Square) domain.Outcome {
	outcome := f.Waiter.ClickWhen(ctx, f.Config.RaceButtonClasses, nil, f.Config.RaceButtonForbidTexts, 0.5, false, true, f.Config.StepTimeout)
	if !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}
	return domain.Ok
}

// #endregion

// #region 4-pre-lobby-gate

func (f *Flow) preLobbyGate(ctx context.Context) domain.Outcome {
	if _, outcome := f.Waiter.Seen(ctx, f.Config.StrategyAffordanceClasses, 0.5, nil, nil, f.Config.StepTimeout); !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}
	return domain.Ok
}

// #endregion

// #region 5-set-strategy

func (f *Flow) setStrategy(ctx context.Context, date domain.Date, preset domain.Preset, isDebut bool) domain.Outcome {
	desired := scheduledStyle(date, preset, isDebut)
	if desired == "" {
		return domain.Ok
	}
	if f.lastAppliedStyle != nil && *f.lastAppliedStyle == desired {
		return domain.Ok
	}

	if outcome := f.Waiter.ClickWhen(ctx, f.Config.StrategyButtonClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}
	if outcome := f.Waiter.ClickWhen(ctx, f.Config.StyleOptionClasses, []string{string(desired)}, nil, 0.5, false, false, f.Config.StepTimeout); !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}

	applied := desired
	f.lastAppliedStyle = &applied
	return domain.Ok
}

// scheduledStyle picks the debut style when isDebut and one is configured,
// otherwise the most recent style-schedule entry whose From <= date.
func scheduledStyle(date domain.Date, preset domain.Preset, isDebut bool) domain.Style {
	if isDebut && preset.DebutStyle != "" {
		return preset.DebutStyle
	}
	var chosen domain.Style
	var chosenFrom domain.Date
	found := false
	for _, entry := range preset.StyleSchedule {
		if entry.From.Compare(date) > 0 {
			continue
		}
		if !found || chosenFrom.Compare(entry.From) < 0 {
			chosen, chosenFrom, found = entry.Style, entry.From, true
		}
	}
	return chosen
}

// #endregion

// #region 6-run-race

func (f *Flow) runRace(ctx context.Context) domain.Outcome {
	if len(f.Config.RunRaceConfirmClasses) == 0 {
		return domain.Ok
	}
	if outcome := f.Waiter.ClickWhen(ctx, f.Config.RunRaceConfirmClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}
	return domain.Ok
}

// #endregion

// #region 7-post-race-lobby

func (f *Flow) postRaceLobby(ctx context.Context) (bool, domain.Outcome) {
	deadline := time.Now().Add(f.Config.StepTimeout)
	for {
		if time.Now().After(deadline) {
			return false, domain.SoftFail("buttons_missing")
		}
		frame, err := f.Waiter.Snap(ctx)
		if err != nil {
			return false, domain.SoftFail("capture_error")
		}
		active, box, err := f.Results.ViewResultsActive(ctx, frame)
		if err != nil {
			return false, domain.SoftFail("read_error")
		}
		if active {
			if err := f.Waiter.Controller.Click(ctx, (box.X1+box.X2)/2, (box.Y1+box.Y2)/2); err != nil {
				return false, domain.SoftFail("click_error")
			}
			break
		}
		time.Sleep(time.Duration(f.Waiter.Config.Interval))
	}

	frame, err := f.Waiter.Snap(ctx)
	if err != nil {
		return false, domain.SoftFail("capture_error")
	}
	lost, err := f.Results.LossDetected(ctx, frame)
	if err != nil {
		return false, domain.SoftFail("read_error")
	}
	if lost {
		return true, domain.Ok
	}

	for _, classes := range [][]string{f.Config.NextButtonClasses, f.Config.RaceAfterNextButtonClasses} {
		if len(classes) == 0 {
			continue
		}
		if outcome := f.Waiter.ClickWhen(ctx, classes, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
			return false, domain.SoftFail("buttons_missing")
		}
	}
	return false, domain.Ok
}

// #endregion

// #region 8-loss-retry

func (f *Flow) resolvePostRace(ctx context.Context, params RunParams, attempt int) domain.Outcome {
	lost, outcome := f.postRaceLobby(ctx)
	if !outcome.IsOK() {
		return outcome
	}
	if !lost {
		return domain.Ok
	}
	return f.lossRetry(ctx, params, attempt)
}

func (f *Flow) lossRetry(ctx context.Context, params RunParams, attempt int) domain.Outcome {
	if attempt >= f.Config.MaxLossRetries {
		return domain.HardFail("loss_loop")
	}

	if params.TryAgainOnFailedGoal && params.IsGoalRace {
		if outcome := f.Waiter.ClickWhen(ctx, f.Config.TryAgainButtonClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
			return domain.SoftFail("buttons_missing")
		}
		f.Waiter.TryClickOnce(ctx, f.Config.AlarmClockCloseClasses, 0.5)
		return f.resolvePostRace(ctx, params, attempt+1)
	}

	if outcome := f.Waiter.ClickWhen(ctx, f.Config.ContinueWithoutRetryClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
		return domain.SoftFail("buttons_missing")
	}
	return domain.Ok
}

// #endregion
