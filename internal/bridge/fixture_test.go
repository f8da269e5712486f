package bridge

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
)

func writeFixture(t *testing.T, rec FixtureRecording) string {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFixtureBridgeCapturesFramesInOrder(t *testing.T) {
	rec := FixtureRecording{
		Frames: []FixtureFrame{
			{TakenAtUnixMilli: 1, Detections: []FixtureDetection{{Class: "lobby_menu_bar", Confidence: 0.9}}},
			{TakenAtUnixMilli: 2, Detections: []FixtureDetection{{Class: "training_tile", Confidence: 0.8}}},
		},
	}
	path := writeFixture(t, rec)
	loaded, err := LoadFixtureRecording(path)
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	b := NewFixtureBridge(loaded)

	ctx := context.Background()
	f1, err := b.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if len(f1.Detections) != 1 || f1.Detections[0].Class != "lobby_menu_bar" {
		t.Fatalf("got %+v", f1.Detections)
	}

	f2, err := b.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if f2.Detections[0].Class != "training_tile" {
		t.Fatalf("got %+v", f2.Detections)
	}

	f3, err := b.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if f3.Detections[0].Class != "training_tile" {
		t.Fatalf("expected capture past the end to repeat the last frame, got %+v", f3.Detections)
	}
}

func TestFixtureBridgeRecordsClicksAndScrolls(t *testing.T) {
	rec := FixtureRecording{Frames: []FixtureFrame{{TakenAtUnixMilli: 1}}}
	b := NewFixtureBridge(&rec)
	ctx := context.Background()

	if err := b.Click(ctx, 10, 20); err != nil {
		t.Fatalf("click: %v", err)
	}
	if err := b.Scroll(ctx, 0, 0, 0, 100, 5); err != nil {
		t.Fatalf("scroll: %v", err)
	}
	if len(b.RecordedClicks) != 1 || b.RecordedClicks[0] != (ClickCall{X: 10, Y: 20}) {
		t.Fatalf("got %+v", b.RecordedClicks)
	}
	if len(b.RecordedScrolls) != 1 {
		t.Fatalf("got %+v", b.RecordedScrolls)
	}
}

func TestFixtureBridgeOCRLooksUpByROI(t *testing.T) {
	roi := domain.Box{X1: 1, Y1: 2, X2: 3, Y2: 4}
	rec := FixtureRecording{
		Frames: []FixtureFrame{{
			TakenAtUnixMilli: 1,
			OCR: map[string][]FixtureOCRRead{
				roiKey(roi): {{Text: "Energy: 80", Confidence: 0.95}},
			},
		}},
	}
	b := NewFixtureBridge(&rec)
	ctx := context.Background()
	frame, err := b.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	reads, err := b.OCR(ctx, frame, roi, "0123456789")
	if err != nil {
		t.Fatalf("ocr: %v", err)
	}
	if len(reads) != 1 || reads[0].Text != "Energy: 80" {
		t.Fatalf("got %+v", reads)
	}
}

func TestFixtureBridgeDetectReturnsFrameDetections(t *testing.T) {
	rec := FixtureRecording{
		Frames: []FixtureFrame{{Detections: []FixtureDetection{{Class: "race_button", Confidence: 0.7}}}},
	}
	b := NewFixtureBridge(&rec)
	ctx := context.Background()
	frame, err := b.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	dets, err := b.Detect(ctx, frame)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(dets) != 1 || dets[0].Class != "race_button" {
		t.Fatalf("got %+v", dets)
	}
}
