package bridge

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
)

// #endregion

// #region fixture shape

// FixtureFrame is one JSON-recorded capture, mirroring
// internal/replay/fixture.go's FixtureInteraction shape adapted to frames
// of detections/OCR reads instead of prompt/response turns.
type FixtureFrame struct {
	TakenAtUnixMilli int64                       `json:"taken_at_unix_milli"`
	Detections       []FixtureDetection          `json:"detections"`
	OCR              map[string][]FixtureOCRRead `json:"ocr"`
}

// FixtureDetection mirrors domain.Detection with JSON tags.
type FixtureDetection struct {
	Class      string  `json:"class"`
	Confidence float32 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

// FixtureOCRRead mirrors domain.OCRResult with JSON tags.
type FixtureOCRRead struct {
	Text       string  `json:"text"`
	Confidence float32 `json:"confidence"`
}

// FixtureRecording is the top-level JSON document: an ordered sequence of
// frames a FixtureBridge replays one per Capture call.
type FixtureRecording struct {
	Description string         `json:"description"`
	Frames      []FixtureFrame `json:"frames"`
}

// LoadFixtureRecording reads and parses a JSON fixture recording.
func LoadFixtureRecording(path string) (*FixtureRecording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bridge: read fixture %s: %w", path, err)
	}
	var rec FixtureRecording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("bridge: parse fixture %s: %w", path, err)
	}
	return &rec, nil
}

func (f FixtureFrame) toDomain() *domain.Frame {
	detections := make([]domain.Detection, len(f.Detections))
	for i, d := range f.Detections {
		detections[i] = domain.Detection{
			Class:      d.Class,
			Confidence: d.Confidence,
			Box:        domain.Box{X1: d.X1, Y1: d.Y1, X2: d.X2, Y2: d.Y2},
		}
	}
	return domain.NewFrame(f.TakenAtUnixMilli, detections)
}

// #endregion

// #region fixture bridge

// FixtureBridge replays a fixed FixtureRecording as both a ports.Controller
// and a ports.Perception, for offline testing without a live backend
// (spec §6's recorded-interaction harness). Click/Scroll are recorded, not
// simulated: callers assert on RecordedClicks/RecordedScrolls afterward.
type FixtureBridge struct {
	mu       sync.Mutex
	frames   []FixtureFrame
	cursor   int
	ocrByROI map[string][]FixtureOCRRead

	RecordedClicks  []ClickCall
	RecordedScrolls []ScrollCall
}

// ClickCall records one Click invocation.
type ClickCall struct{ X, Y int }

// ScrollCall records one Scroll invocation.
type ScrollCall struct{ FromX, FromY, ToX, ToY, Dy int }

// NewFixtureBridge builds a FixtureBridge over rec's frames, replayed in
// order; Capture past the last frame repeats the final one so a poll loop
// that overruns the fixture degrades instead of panicking.
func NewFixtureBridge(rec *FixtureRecording) *FixtureBridge {
	return &FixtureBridge{frames: rec.Frames}
}

func (b *FixtureBridge) ControllerKind() ports.ControllerKind {
	return ports.ControllerFixture
}

// Capture returns the next recorded frame, advancing the cursor.
func (b *FixtureBridge) Capture(ctx context.Context) (*domain.Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil, fmt.Errorf("bridge: fixture has no frames")
	}
	idx := b.cursor
	if idx >= len(b.frames) {
		idx = len(b.frames) - 1
	} else {
		b.cursor++
	}
	f := b.frames[idx]
	b.ocrByROI = f.OCR
	return f.toDomain(), nil
}

// Click records the call without acting on anything.
func (b *FixtureBridge) Click(ctx context.Context, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.RecordedClicks = append(b.RecordedClicks, ClickCall{X: x, Y: y})
	return nil
}

// Scroll records the call without acting on anything.
func (b *FixtureBridge) Scroll(ctx context.Context, fromX, fromY, toX, toY, dy int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.RecordedScrolls = append(b.RecordedScrolls, ScrollCall{FromX: fromX, FromY: fromY, ToX: toX, ToY: toY, Dy: dy})
	return nil
}

// Detect returns the detections already attached to frame: the fixture
// records perception output alongside the capture, so there is nothing
// further to compute.
func (b *FixtureBridge) Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error) {
	return frame.Detections, nil
}

// OCR returns the fixture's recorded reads for roiKey, looked up by the
// same string key the caller would pass as a cache key (domain.Frame's
// CacheOCR convention).
func (b *FixtureBridge) OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := roiKey(roi)
	reads, ok := b.ocrByROI[key]
	if !ok {
		return nil, nil
	}
	out := make([]domain.OCRResult, len(reads))
	for i, r := range reads {
		out[i] = domain.OCRResult{Text: r.Text, Confidence: r.Confidence}
	}
	return out, nil
}

func roiKey(roi domain.Box) string {
	return fmt.Sprintf("%d,%d,%d,%d", roi.X1, roi.Y1, roi.X2, roi.Y2)
}

// #endregion
