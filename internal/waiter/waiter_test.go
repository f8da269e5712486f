package waiter

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
)

// #region fakes

type fakeController struct {
	clicks [][2]int
}

func (c *fakeController) Capture(ctx context.Context) (*domain.Frame, error) {
	return domain.NewFrame(0, nil), nil
}

func (c *fakeController) Click(ctx context.Context, x, y int) error {
	c.clicks = append(c.clicks, [2]int{x, y})
	return nil
}

func (c *fakeController) Scroll(ctx context.Context, fromX, fromY, toX, toY, dy int) error {
	return nil
}

func (c *fakeController) ControllerKind() ports.ControllerKind { return ports.ControllerFixture }

type fakePerception struct {
	dets  []domain.Detection
	byROI map[string][]domain.OCRResult
}

func (p *fakePerception) Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error) {
	return p.dets, nil
}

func (p *fakePerception) OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error) {
	if p.byROI == nil {
		return nil, nil
	}
	return p.byROI[keyFor(roi)], nil
}

func keyFor(b domain.Box) string {
	return fmt.Sprintf("%d,%d", b.X1, b.Y1)
}

// #endregion

func testCfg() domain.PollConfig {
	return domain.PollConfig{Interval: int64(5 * time.Millisecond), OverallTimeout: int64(200 * time.Millisecond), AttemptTimeout: int64(50 * time.Millisecond), AgentTag: "test"}
}

func TestSeenFindsImmediateMatch(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{dets: []domain.Detection{{Class: "buy_button", Confidence: 0.9, Box: domain.Box{X1: 1, Y1: 1, X2: 10, Y2: 10}}}}
	w := New(ctrl, perc, testCfg(), nil)

	d, outcome := w.Seen(context.Background(), []string{"buy_button"}, 0.5, nil, nil, 100*time.Millisecond)
	if !outcome.IsOK() {
		t.Fatalf("expected Ok, got %v", outcome)
	}
	if d.Class != "buy_button" {
		t.Fatalf("unexpected detection: %+v", d)
	}
}

func TestSeenTimesOutOnNoMatch(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{}
	w := New(ctrl, perc, testCfg(), nil)

	_, outcome := w.Seen(context.Background(), []string{"buy_button"}, 0.5, nil, nil, 20*time.Millisecond)
	if outcome.Kind != domain.OutcomeNoMatch {
		t.Fatalf("expected NoMatch, got %v", outcome)
	}
}

func TestSeenHonorsStopFlag(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{}
	stop := &atomic.Bool{}
	stop.Store(true)
	w := New(ctrl, perc, testCfg(), stop)

	_, outcome := w.Seen(context.Background(), []string{"buy_button"}, 0.5, nil, nil, time.Second)
	if outcome.Reason != "aborted" {
		t.Fatalf("expected aborted soft fail, got %v", outcome)
	}
}

func TestClickWhenGreedySingleCandidate(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{dets: []domain.Detection{{Class: "race_button", Confidence: 0.95, Box: domain.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}}}}
	w := New(ctrl, perc, testCfg(), nil)

	outcome := w.ClickWhen(context.Background(), []string{"race_button"}, nil, nil, 0.5, false, true, 100*time.Millisecond)
	if !outcome.IsOK() {
		t.Fatalf("expected Ok, got %v", outcome)
	}
	if len(ctrl.clicks) != 1 {
		t.Fatalf("expected one click, got %d", len(ctrl.clicks))
	}
}

func TestClickWhenPreferBottom(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{dets: []domain.Detection{
		{Class: "tile", Confidence: 0.9, Box: domain.Box{X1: 0, Y1: 0, X2: 10, Y2: 10}},
		{Class: "tile", Confidence: 0.9, Box: domain.Box{X1: 0, Y1: 100, X2: 10, Y2: 110}},
	}}
	w := New(ctrl, perc, testCfg(), nil)

	outcome := w.ClickWhen(context.Background(), []string{"tile"}, nil, nil, 0.5, true, false, 100*time.Millisecond)
	if !outcome.IsOK() {
		t.Fatalf("expected Ok, got %v", outcome)
	}
	if ctrl.clicks[0][1] != 105 {
		t.Fatalf("expected bottom tile clicked (y=105), got %+v", ctrl.clicks[0])
	}
}

func TestTryClickOnceNoMatch(t *testing.T) {
	ctrl := &fakeController{}
	perc := &fakePerception{}
	w := New(ctrl, perc, testCfg(), nil)

	outcome := w.TryClickOnce(context.Background(), []string{"buy_button"}, 0.5)
	if outcome.Kind != domain.OutcomeNoMatch {
		t.Fatalf("expected NoMatch, got %v", outcome)
	}
}
