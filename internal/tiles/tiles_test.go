package tiles

import (
	"context"
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
)

type fakePerception struct {
	reads []domain.OCRResult
}

func (p *fakePerception) Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error) {
	return frame.Detections, nil
}

func (p *fakePerception) OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error) {
	return p.reads, nil
}

func TestExtractCountsDetectionsWithinBox(t *testing.T) {
	tileBox := domain.Box{X1: 0, Y1: 0, X2: 100, Y2: 100}
	frame := domain.NewFrame(0, []domain.Detection{
		{Class: ClassRainbowHint, Box: domain.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}},
		{Class: ClassHint, Box: domain.Box{X1: 30, Y1: 30, X2: 40, Y2: 40}},
		{Class: ClassBlueSpirit, Box: domain.Box{X1: 200, Y1: 200, X2: 210, Y2: 210}}, // outside
	})
	perc := &fakePerception{reads: []domain.OCRResult{{Text: "42%", Confidence: 0.9}}}
	ex := NewExtractor(perc, nil)

	f, err := ex.Extract(context.Background(), frame, domain.StatSPD, tileBox)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.RainbowCount != 1 || f.HintCount != 1 || f.BlueSpiritCount != 0 {
		t.Fatalf("unexpected counts: %+v", f)
	}
	if f.FailurePercent != 42 {
		t.Fatalf("FailurePercent = %v, want 42", f.FailurePercent)
	}
}

func TestParseFailurePercentPicksHighestConfidence(t *testing.T) {
	reads := []domain.OCRResult{
		{Text: "junk", Confidence: 0.1},
		{Text: "17%", Confidence: 0.8},
	}
	if got := parseFailurePercent(reads); got != 17 {
		t.Fatalf("got %v, want 17", got)
	}
}

func TestParseFailurePercentNoReadsReturnsZero(t *testing.T) {
	if got := parseFailurePercent(nil); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}
