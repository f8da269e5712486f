// Package waiter implements the single synchronization primitive used for
// every UI interaction: polling perception until a detection (optionally
// confirmed by OCR) satisfies a guard, then issuing a click.
package waiter

// #region imports
import (
	"context"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
)

// #endregion

// #region waiter-struct

// Waiter polls a Controller/Perception pair under a PollConfig. All UI
// interactions funnel through it so the agent never races a UI transition.
type Waiter struct {
	Controller ports.Controller
	Perception ports.Perception
	Config     domain.PollConfig
	Stop       *atomic.Bool // shared with the hotkey monitor; checked each poll
}

// New builds a Waiter. stop may be nil, meaning cancellation is never honored
// (used by replay, which has no hotkey thread).
func New(controller ports.Controller, perception ports.Perception, cfg domain.PollConfig, stop *atomic.Bool) *Waiter {
	if stop == nil {
		stop = &atomic.Bool{}
	}
	return &Waiter{Controller: controller, Perception: perception, Config: cfg, Stop: stop}
}

func (w *Waiter) stopped() bool {
	return w.Stop != nil && w.Stop.Load()
}

// #endregion

// #region snap

// Snap captures one frame and runs detection against it, without polling.
func (w *Waiter) Snap(ctx context.Context) (*domain.Frame, error) {
	frame, err := w.Controller.Capture(ctx)
	if err != nil {
		return nil, err
	}
	dets, err := w.Perception.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	frame.Detections = dets
	return frame, nil
}

// #endregion

// #region seen

// Seen polls at Config.Interval until a frame contains a detection in
// classes with confidence >= minConf and, when texts is non-empty, an OCR
// match inside the detection's box that is not in forbidTexts. Fails with
// NoMatch on timeout, Aborted if the stop flag is set.
func (w *Waiter) Seen(ctx context.Context, classes []string, minConf float32, texts, forbidTexts []string, timeout time.Duration) (domain.Detection, domain.Outcome) {
	deadline := time.Now().Add(timeout)
	for {
		if w.stopped() {
			return domain.Detection{}, domain.SoftFail("aborted")
		}
		if time.Now().After(deadline) {
			return domain.Detection{}, domain.NoMatch
		}

		frame, err := w.Snap(ctx)
		if err != nil {
			log.Printf("[waiter] snap error during seen: %v", err)
			time.Sleep(interval(w.Config))
			continue
		}

		candidates := filterByConfidence(frame.ByClass(classes...), minConf)
		for _, d := range candidates {
			if len(texts) == 0 {
				return d, domain.Ok
			}
			reads, _ := w.Perception.OCR(ctx, frame, d.Box, "")
			if ocrMatches(reads, texts, forbidTexts, 0) {
				return d, domain.Ok
			}
		}

		time.Sleep(interval(w.Config))
	}
}

// #endregion

// #region click-when

// ClickWhen clicks a candidate satisfying the guard and returns Ok iff a
// click was issued. threshold is the minimum detection confidence and also
// the OCR confidence floor used to reject forbidden text. A timeout <= 0
// falls back to Config.OverallTimeout.
//
// Three cascades, checked in order on every poll iteration:
//  1. exactly one candidate, allowGreedy true, no forbidden text in its ROI -> click without OCR confirmation.
//  2. preferBottom true and multiple candidates -> click the bottom-most, same forbid-text guard.
//  3. otherwise disambiguate by OCR against texts, rejecting ROIs whose OCR contains a forbidTexts entry above threshold.
func (w *Waiter) ClickWhen(ctx context.Context, classes []string, texts, forbidTexts []string, threshold float32, preferBottom, allowGreedy bool, timeout time.Duration) domain.Outcome {
	if timeout <= 0 {
		timeout = time.Duration(w.Config.OverallTimeout)
	}
	deadline := time.Now().Add(timeout)
	for {
		if w.stopped() {
			return domain.SoftFail("aborted")
		}
		if time.Now().After(deadline) {
			return domain.NoMatch
		}

		frame, err := w.Snap(ctx)
		if err != nil {
			log.Printf("[waiter] snap error during click_when: %v", err)
			time.Sleep(interval(w.Config))
			continue
		}

		candidates := filterByConfidence(frame.ByClass(classes...), threshold)
		if len(candidates) == 0 {
			time.Sleep(interval(w.Config))
			continue
		}

		// Cascade 1: greedy single-candidate click.
		if len(candidates) == 1 && allowGreedy {
			d := candidates[0]
			if !w.forbidden(ctx, frame, d, forbidTexts, threshold) {
				return w.clickDetection(ctx, d)
			}
		}

		// Cascade 2: prefer bottom-most among multiple candidates.
		if preferBottom && len(candidates) > 1 {
			sorted := append([]domain.Detection(nil), candidates...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Box.CenterY() > sorted[j].Box.CenterY() })
			d := sorted[0]
			if !w.forbidden(ctx, frame, d, forbidTexts, threshold) {
				return w.clickDetection(ctx, d)
			}
		}

		// Cascade 3: OCR disambiguation against texts.
		if len(texts) > 0 {
			for _, d := range candidates {
				reads, _ := w.Perception.OCR(ctx, frame, d.Box, "")
				if w.forbiddenReads(reads, forbidTexts, threshold) {
					continue
				}
				if ocrMatches(reads, texts, nil, 0) {
					return w.clickDetection(ctx, d)
				}
			}
		}

		time.Sleep(interval(w.Config))
	}
}

func (w *Waiter) forbidden(ctx context.Context, frame *domain.Frame, d domain.Detection, forbidTexts []string, threshold float32) bool {
	if len(forbidTexts) == 0 {
		return false
	}
	reads, _ := w.Perception.OCR(ctx, frame, d.Box, "")
	return w.forbiddenReads(reads, forbidTexts, threshold)
}

func (w *Waiter) forbiddenReads(reads []domain.OCRResult, forbidTexts []string, threshold float32) bool {
	return containsForbidden(reads, forbidTexts, threshold)
}

func (w *Waiter) clickDetection(ctx context.Context, d domain.Detection) domain.Outcome {
	cx := (d.Box.X1 + d.Box.X2) / 2
	cy := (d.Box.Y1 + d.Box.Y2) / 2
	if err := w.Controller.Click(ctx, cx, cy); err != nil {
		return domain.SoftFail("click_error")
	}
	return domain.Ok
}

// #endregion

// #region try-click-once

// TryClickOnce takes a single probe (no polling) and clicks the first
// candidate above minConf, if any.
func (w *Waiter) TryClickOnce(ctx context.Context, classes []string, minConf float32) domain.Outcome {
	frame, err := w.Snap(ctx)
	if err != nil {
		return domain.SoftFail("snap_error")
	}
	candidates := filterByConfidence(frame.ByClass(classes...), minConf)
	if len(candidates) == 0 {
		return domain.NoMatch
	}
	return w.clickDetection(ctx, candidates[0])
}

// #endregion

// #region helpers

func interval(cfg domain.PollConfig) time.Duration {
	return time.Duration(cfg.Interval)
}

func filterByConfidence(dets []domain.Detection, minConf float32) []domain.Detection {
	var out []domain.Detection
	for _, d := range dets {
		if d.Confidence >= minConf {
			out = append(out, d)
		}
	}
	return out
}

// #endregion
