// Package skills implements the scroll-scan -> buy -> confirm -> recover
// skills-shop flow (spec §4.8). Grounded in
// internal/orchestrator.RetryEngine's bounded-attempts-with-escalation-chain
// shape, combined with internal/orchestrator.Orchestrator.PostGenerate's
// accept/retry/give-up control flow, repurposed here as
// buy/confirm/recover/give-up.
package skills

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

// #region tile

// Grade is a skill's purchase tier, matching memory.SkillMemory's own
// grade domain (spec §3: "grade ∈ {single-circle, double-circle}").
const (
	GradeSingle = "single-circle"
	GradeDouble = "double-circle"
)

// Tile is one skill-shop tile read during a scroll position, already
// resolved from detections + OCR by a Reader.
type Tile struct {
	Title     string
	Grade     string
	BuyBox    domain.Box
	BuyActive bool // false when the BUY affordance renders greyed-out
}

// Reader resolves the tiles visible in a captured frame. Implementations
// combine detection boxes with title/grade OCR; kept separate from Flow so
// it can be swapped per scenario catalog layout.
type Reader interface {
	ReadTiles(ctx context.Context, frame *domain.Frame) ([]Tile, error)
}

// #endregion

// #region config

// Config names the detection classes and button texts the chain steps
// through. Every field is scenario-specific wiring, not a tunable score.
type Config struct {
	AllowList []matcher.AllowEntry

	MaxScrollPositions int
	ScrollFromX        int
	ScrollFromY        int
	ScrollToX          int
	ScrollToY          int
	ScrollDY           int

	BackButtonClasses    []string
	ConfirmButtonClasses []string
	LearnButtonClasses   []string
	CloseButtonClasses   []string
	LobbyMarkerClasses   []string
	RacedayMarkerClasses []string

	StepTimeout     time.Duration
	RecoveryTimeout time.Duration
	MaxRecoveryBack int
}

// #endregion

// #region flow

// Flow runs the skills-shop chain for one entry. It holds no state across
// calls; SkillMemory is the only thing that outlives a single Run.
type Flow struct {
	Waiter *waiter.Waiter
	Memory *memory.SkillMemory
	Reader Reader
	Config Config
}

// New builds a Flow.
func New(w *waiter.Waiter, mem *memory.SkillMemory, reader Reader, cfg Config) *Flow {
	return &Flow{Waiter: w, Memory: mem, Reader: reader, Config: cfg}
}

type clickedTile struct {
	Name  string
	Grade string
}

// Run executes one full pass: scroll-scan every position, buy matched and
// unowned tiles, then confirm. It never returns domain.Ok unless it both
// attempted at least one buy (or found nothing to buy, in which case it
// returns NoMatch) and verified the UI landed back on Lobby or Raceday.
func (f *Flow) Run(ctx context.Context) domain.Outcome {
	var clicked []clickedTile

	positions := f.Config.MaxScrollPositions
	if positions < 1 {
		positions = 1
	}

	for pos := 0; pos < positions; pos++ {
		frame, err := f.Waiter.Snap(ctx)
		if err != nil {
			return domain.SoftFail("capture_error")
		}

		tiles, err := f.Reader.ReadTiles(ctx, frame)
		if err != nil {
			return domain.SoftFail("read_error")
		}

		for _, tile := range tiles {
			entry, ok := matcher.Match(tile.Title, f.Config.AllowList)
			if !ok {
				continue
			}
			purchased, err := f.Memory.IsPurchased(entry.Name, tile.Grade)
			if err != nil {
				return domain.SoftFail("memory_error")
			}
			if purchased {
				continue
			}
			if !tile.BuyActive {
				continue
			}
			if err := f.Waiter.Controller.Click(ctx, centerX(tile.BuyBox), centerY(tile.BuyBox)); err != nil {
				return domain.SoftFail("click_error")
			}
			clicked = append(clicked, clickedTile{Name: entry.Name, Grade: tile.Grade})
			log.Printf("[skills] bought tile name=%q grade=%s scroll_pos=%d", entry.Name, tile.Grade, pos)
		}

		if pos < positions-1 {
			if err := f.Waiter.Controller.Scroll(ctx, f.Config.ScrollFromX, f.Config.ScrollFromY, f.Config.ScrollToX, f.Config.ScrollToY, f.Config.ScrollDY); err != nil {
				return domain.SoftFail("scroll_error")
			}
		}
	}

	if len(clicked) == 0 {
		f.Waiter.ClickWhen(ctx, f.Config.BackButtonClasses, nil, nil, 0.5, false, true, f.Config.StepTimeout)
		return domain.NoMatch
	}

	if outcome := f.confirmChain(ctx); !outcome.IsOK() {
		f.recover(ctx)
		return domain.SoftFail(reasonFor(outcome))
	}

	markers := append(append([]string{}, f.Config.LobbyMarkerClasses...), f.Config.RacedayMarkerClasses...)
	if _, outcome := f.Waiter.Seen(ctx, markers, 0.5, nil, nil, f.Config.RecoveryTimeout); !outcome.IsOK() {
		f.recover(ctx)
		return domain.SoftFail("landing_not_confirmed")
	}

	for _, c := range clicked {
		if err := f.Memory.MarkPurchased(c.Name, c.Grade); err != nil {
			log.Printf("[skills] failed to record purchase name=%q grade=%s: %v", c.Name, c.Grade, err)
		}
	}

	return domain.Ok
}

// confirmChain runs Confirm -> Learn -> Close -> Back, each bounded by
// StepTimeout. The first step that fails to appear aborts the chain.
func (f *Flow) confirmChain(ctx context.Context) domain.Outcome {
	steps := [][]string{
		f.Config.ConfirmButtonClasses,
		f.Config.LearnButtonClasses,
		f.Config.CloseButtonClasses,
		f.Config.BackButtonClasses,
	}
	for _, classes := range steps {
		if len(classes) == 0 {
			continue
		}
		if outcome := f.Waiter.ClickWhen(ctx, classes, nil, nil, 0.5, false, true, f.Config.StepTimeout); !outcome.IsOK() {
			return outcome
		}
	}
	return domain.Ok
}

// recover issues bounded extra Back taps, probing for Lobby/Raceday markers
// after each one, so a caller never has to assume success from silence.
func (f *Flow) recover(ctx context.Context) {
	for i := 0; i < f.Config.MaxRecoveryBack; i++ {
		f.Waiter.TryClickOnce(ctx, f.Config.BackButtonClasses, 0.5)

		markers := append(append([]string{}, f.Config.LobbyMarkerClasses...), f.Config.RacedayMarkerClasses...)
		if _, outcome := f.Waiter.Seen(ctx, markers, 0.5, nil, nil, f.Config.RecoveryTimeout); outcome.IsOK() {
			return
		}
	}
}

func reasonFor(o domain.Outcome) string {
	if o.Reason != "" {
		return o.Reason
	}
	return string(o.Kind)
}

func centerX(b domain.Box) int { return (b.X1 + b.X2) / 2 }
func centerY(b domain.Box) int { return (b.Y1 + b.Y2) / 2 }

// #endregion
