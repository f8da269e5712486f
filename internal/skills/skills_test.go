package skills

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/matcher"
	"github.com/umaplay/career-agent/internal/memory"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/waiter"
)

// #region fakes

type fakeController struct {
	scrolls int
	clicks  [][2]int
	// markerSeenAfter makes the Lobby/Raceday marker classes appear once
	// this many Back clicks have been recorded, simulating a recovering UI.
	markerSeenAfter int
}

func (c *fakeController) Capture(ctx context.Context) (*domain.Frame, error) {
	return domain.NewFrame(0, nil), nil
}

func (c *fakeController) Click(ctx context.Context, x, y int) error {
	c.clicks = append(c.clicks, [2]int{x, y})
	return nil
}

func (c *fakeController) Scroll(ctx context.Context, fromX, fromY, toX, toY, dy int) error {
	c.scrolls++
	return nil
}

func (c *fakeController) ControllerKind() ports.ControllerKind { return ports.ControllerFixture }

type scriptedPerception struct {
	classes map[string]bool // which classes are "present" for click_when steps
}

func (p *scriptedPerception) Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error) {
	var dets []domain.Detection
	for class, present := range p.classes {
		if present {
			dets = append(dets, domain.Detection{Class: class, Box: domain.Box{X1: 1, Y1: 1, X2: 2, Y2: 2}, Confidence: 0.9})
		}
	}
	return dets, nil
}

func (p *scriptedPerception) OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error) {
	return nil, nil
}

func testConfig(allow []matcher.AllowEntry) Config {
	return Config{
		AllowList:            allow,
		MaxScrollPositions:   1,
		BackButtonClasses:    []string{"back_button"},
		ConfirmButtonClasses: []string{"confirm_button"},
		LearnButtonClasses:   []string{"learn_button"},
		CloseButtonClasses:   []string{"close_button"},
		LobbyMarkerClasses:   []string{"lobby_marker"},
		RacedayMarkerClasses: []string{"raceday_marker"},
		StepTimeout:          50 * time.Millisecond,
		RecoveryTimeout:      50 * time.Millisecond,
		MaxRecoveryBack:      2,
	}
}

type staticReader struct {
	tiles []Tile
}

func (r *staticReader) ReadTiles(ctx context.Context, frame *domain.Frame) ([]Tile, error) {
	return r.tiles, nil
}

func openMemory(t *testing.T) *memory.SkillMemory {
	t.Helper()
	db, err := memory.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	mem, err := memory.NewSkillMemory(db)
	if err != nil {
		t.Fatalf("NewSkillMemory: %v", err)
	}
	return mem
}

func allowList() []matcher.AllowEntry {
	return []matcher.AllowEntry{
		{Name: "Non-Standard Equipment", PositiveTokens: []string{"non", "standard", "equipment"}},
		{Name: "Standard Equipment", PositiveTokens: []string{"standard", "equipment"}, NegativeTokens: []string{"non"}},
	}
}

// #endregion

func TestRunReturnsNoMatchWhenNothingToBuy(t *testing.T) {
	ctrl := &fakeController{}
	perc := &scriptedPerception{classes: map[string]bool{"back_button": true}}
	w := waiter.New(ctrl, perc, domain.PollConfig{Interval: int64(5 * time.Millisecond)}, &atomic.Bool{})
	reader := &staticReader{tiles: []Tile{{Title: "Completely Unrelated Skill", BuyActive: true}}}
	mem := openMemory(t)

	flow := New(w, mem, reader, testConfig(allowList()))
	outcome := flow.Run(context.Background())

	if outcome.Kind != domain.OutcomeNoMatch {
		t.Fatalf("outcome = %v, want NoMatch", outcome)
	}
	if len(ctrl.clicks) == 0 {
		t.Fatal("expected a Back click before returning NoMatch")
	}
}

func TestRunSkipsAlreadyPurchasedGrade(t *testing.T) {
	ctrl := &fakeController{}
	perc := &scriptedPerception{classes: map[string]bool{"back_button": true}}
	w := waiter.New(ctrl, perc, domain.PollConfig{Interval: int64(5 * time.Millisecond)}, &atomic.Bool{})
	reader := &staticReader{tiles: []Tile{{Title: "Standard Equipment", Grade: GradeSingle, BuyActive: true, BuyBox: domain.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}}}}
	mem := openMemory(t)
	if err := mem.MarkPurchased("Standard Equipment", GradeSingle); err != nil {
		t.Fatalf("MarkPurchased: %v", err)
	}

	flow := New(w, mem, reader, testConfig(allowList()))
	outcome := flow.Run(context.Background())

	if outcome.Kind != domain.OutcomeNoMatch {
		t.Fatalf("outcome = %v, want NoMatch", outcome)
	}
	if len(ctrl.clicks) != 1 {
		t.Fatalf("expected only the trailing Back click, got %d clicks", len(ctrl.clicks))
	}
}

func TestRunSkipsInactiveBuyButton(t *testing.T) {
	ctrl := &fakeController{}
	perc := &scriptedPerception{classes: map[string]bool{}}
	w := waiter.New(ctrl, perc, domain.PollConfig{Interval: int64(5 * time.Millisecond)}, &atomic.Bool{})
	reader := &staticReader{tiles: []Tile{{Title: "Standard Equipment", Grade: GradeSingle, BuyActive: false}}}
	mem := openMemory(t)

	flow := New(w, mem, reader, testConfig(allowList()))
	outcome := flow.Run(context.Background())

	if outcome.Kind != domain.OutcomeNoMatch {
		t.Fatalf("outcome = %v, want NoMatch", outcome)
	}
}

func TestRunSuccessConfirmsAndRecordsPurchase(t *testing.T) {
	ctrl := &fakeController{}
	perc := &scriptedPerception{classes: map[string]bool{
		"confirm_button": true,
		"learn_button":   true,
		"close_button":   true,
		"back_button":    true,
		"lobby_marker":   true,
	}}
	w := waiter.New(ctrl, perc, domain.PollConfig{Interval: int64(5 * time.Millisecond)}, &atomic.Bool{})
	reader := &staticReader{tiles: []Tile{{Title: "Standard Equipment", Grade: GradeSingle, BuyActive: true, BuyBox: domain.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}}}}
	mem := openMemory(t)

	flow := New(w, mem, reader, testConfig(allowList()))
	outcome := flow.Run(context.Background())

	if outcome.Kind != domain.OutcomeOK {
		t.Fatalf("outcome = %v, want Ok", outcome)
	}
	purchased, err := mem.IsPurchased("Standard Equipment", GradeSingle)
	if err != nil {
		t.Fatalf("IsPurchased: %v", err)
	}
	if !purchased {
		t.Fatal("expected purchase to be recorded after a successful confirm chain")
	}
}

func TestRunFailedExitOnMissingConfirmStep(t *testing.T) {
	ctrl := &fakeController{}
	perc := &scriptedPerception{classes: map[string]bool{
		// confirm_button never appears; the chain must fail before Learn/Close/Back.
	}}
	w := waiter.New(ctrl, perc, domain.PollConfig{Interval: int64(5 * time.Millisecond)}, &atomic.Bool{})
	reader := &staticReader{tiles: []Tile{{Title: "Standard Equipment", Grade: GradeSingle, BuyActive: true, BuyBox: domain.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}}}}
	mem := openMemory(t)

	flow := New(w, mem, reader, testConfig(allowList()))
	outcome := flow.Run(context.Background())

	if outcome.Kind != domain.OutcomeSoftFail {
		t.Fatalf("outcome = %v, want SoftFail", outcome)
	}
	purchased, err := mem.IsPurchased("Standard Equipment", GradeSingle)
	if err != nil {
		t.Fatalf("IsPurchased: %v", err)
	}
	if purchased {
		t.Fatal("must not record a purchase when the confirm chain fails")
	}
}
