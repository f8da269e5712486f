// Package replay runs a fixture-backed agent.Loop for a bounded number of
// ticks and summarizes the outcomes, the offline regression-testing
// counterpart to a live career run (spec §6's "recorded interactions" idea
// applied to the agent tick instead of a single pipeline stage). Grounded
// in internal/replay's former teacher shape (Replay/Summarize a sequence
// of recorded turns through a multi-stage pipeline, tallying per-action
// counts), rewritten around domain.Outcome and agent.Loop.Tick instead of
// the teacher's update -> gate -> eval commit/reject/rollback pipeline.
package replay

// #region imports
import (
	"context"

	"github.com/umaplay/career-agent/internal/agent"
	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region types

// TickResult captures one Loop.Tick outcome and its position in the run.
type TickResult struct {
	Index   int
	Outcome domain.Outcome
}

// Summary aggregates a run's tick results, mirroring the teacher's
// ReplaySummary shape (per-action tallies plus the terminal state) but
// keyed on domain.OutcomeKind and soft-fail reason instead of
// commit/gate_reject/eval_rollback/no_op.
type Summary struct {
	TotalTicks   int
	OK           int
	NoMatch      int
	SoftFails    map[string]int
	HardFail     *domain.Outcome
	StoppedEarly bool
}

// #endregion

// #region run

// Run ticks loop up to maxTicks times, stopping early the first time a
// tick returns a hard failure. A bridge.FixtureBridge signals exhaustion
// by repeating its last frame forever rather than erroring, so maxTicks is
// the only normal stop condition for a fixture-backed run. Cancelling ctx
// between ticks also stops the run; the in-flight tick still completes
// since Loop.Tick owns its own waiter-level cancellation.
func Run(ctx context.Context, loop *agent.Loop, maxTicks int) ([]TickResult, Summary) {
	results := make([]TickResult, 0, maxTicks)
	for i := 0; i < maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		outcome := loop.Tick(ctx)
		results = append(results, TickResult{Index: i, Outcome: outcome})
		if outcome.Kind == domain.OutcomeHardFail {
			break
		}
	}
	return results, Summarize(results, maxTicks)
}

// Summarize computes aggregate stats from a completed or early-stopped
// run's tick results.
func Summarize(results []TickResult, maxTicks int) Summary {
	s := Summary{
		TotalTicks: len(results),
		SoftFails:  map[string]int{},
	}
	for _, r := range results {
		switch r.Outcome.Kind {
		case domain.OutcomeOK:
			s.OK++
		case domain.OutcomeNoMatch:
			s.NoMatch++
		case domain.OutcomeSoftFail:
			s.SoftFails[r.Outcome.Reason]++
		case domain.OutcomeHardFail:
			out := r.Outcome
			s.HardFail = &out
		}
	}
	s.StoppedEarly = s.HardFail != nil && len(results) < maxTicks
	return s
}

// #endregion
