// Package tiles turns a Training screen's raw detections and OCR reads
// into structured per-tile features the evaluator scores (spec §4.6 input
// half). Grounded in internal/signals.Producer's pluggable-backend shape —
// here the "embedder" is replaced by evidence already captured this tick,
// so no network round trip is needed.
package tiles

// #region imports
import (
	"context"
	"strconv"
	"strings"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
)

// #endregion

// #region features

// Features is the derived per-tile signal set the evaluator scores.
type Features struct {
	Stat                      domain.StatKey
	Box                       domain.Box
	RainbowCount              int
	HintCount                 int
	WhiteSpiritFillCount      int
	WhiteSpiritExplodedCount  int
	BlueSpiritCount           int
	SupportCardPresent        bool
	FailurePercent            float64
	HintSourceCards           []string
}

// #endregion

// #region extractor-config

// Detection classes the extractor looks for inside a tile's bounding box.
const (
	ClassRainbowHint      = "rainbow_hint"
	ClassHint             = "hint"
	ClassWhiteSpiritFill  = "white_spirit_fill"
	ClassWhiteSpiritBurst = "white_spirit_exploded"
	ClassBlueSpirit       = "blue_spirit"
	ClassSupportCard      = "support_card"
)

// #endregion

// #region extractor

// Extractor derives Features for each configured tile box on a frame.
type Extractor struct {
	Perception ports.Perception
	FailureROI map[domain.StatKey]domain.Box
}

// NewExtractor builds an Extractor over the given perception backend.
func NewExtractor(perception ports.Perception, failureROI map[domain.StatKey]domain.Box) *Extractor {
	return &Extractor{Perception: perception, FailureROI: failureROI}
}

// Extract builds Features for one tile from the detections already present
// on frame plus a failure-percent OCR read over the tile's ROI.
func (e *Extractor) Extract(ctx context.Context, frame *domain.Frame, stat domain.StatKey, tileBox domain.Box) (Features, error) {
	f := Features{Stat: stat, Box: tileBox}

	inside := detectionsWithin(frame.Detections, tileBox)
	for _, d := range inside {
		switch d.Class {
		case ClassRainbowHint:
			f.RainbowCount++
		case ClassHint:
			f.HintCount++
		case ClassWhiteSpiritFill:
			f.WhiteSpiritFillCount++
		case ClassWhiteSpiritBurst:
			f.WhiteSpiritExplodedCount++
		case ClassBlueSpirit:
			f.BlueSpiritCount++
		case ClassSupportCard:
			f.SupportCardPresent = true
		}
	}

	roi, ok := e.FailureROI[stat]
	if !ok {
		roi = tileBox
	}
	reads, err := e.Perception.OCR(ctx, frame, roi, "0123456789%")
	if err != nil {
		return Features{}, err
	}
	f.FailurePercent = parseFailurePercent(reads)

	return f, nil
}

// #endregion

// #region helpers

func detectionsWithin(dets []domain.Detection, box domain.Box) []domain.Detection {
	var out []domain.Detection
	for _, d := range dets {
		if boxContains(box, d.Box) {
			out = append(out, d)
		}
	}
	return out
}

// boxContains reports whether inner's center falls within outer.
func boxContains(outer, inner domain.Box) bool {
	cx := (inner.X1 + inner.X2) / 2
	cy := (inner.Y1 + inner.Y2) / 2
	return cx >= outer.X1 && cx <= outer.X2 && cy >= outer.Y1 && cy <= outer.Y2
}

// parseFailurePercent takes the highest-confidence read and parses it as a
// number after stripping a trailing '%'. Returns 0 if that read does not
// parse; lower-confidence reads are not tried.
func parseFailurePercent(reads []domain.OCRResult) float64 {
	var best domain.OCRResult
	for _, r := range reads {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	cleaned := strings.TrimSuffix(strings.TrimSpace(best.Text), "%")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// #endregion
