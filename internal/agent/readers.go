package agent

// #region imports
import (
	"context"
	"strconv"
	"strings"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/race"
	"github.com/umaplay/career-agent/internal/skills"
	"github.com/umaplay/career-agent/internal/tiles"
)

// #endregion

// #region perception reader

// PerceptionReader implements race.SquareReader, race.ResultReader, and
// skills.Reader over a shared ports.Perception backend, combining
// detection boxes with OCR title/grade reads the same way
// tiles.Extractor combines detections with a failure-percent OCR read.
// One instance is reused across the whole agent loop; it holds no
// per-call state.
type PerceptionReader struct {
	Perception ports.Perception

	SquareClass       string
	StarClass         string
	RecommendedClass  string
	SkillTileClass    string
	SkillBuyClass     string
	SkillGradeClasses map[string]string // detection class per skill grade badge, keyed by skills.Grade
}

func NewPerceptionReader(p ports.Perception) *PerceptionReader {
	return &PerceptionReader{
		Perception:       p,
		SquareClass:      "race_square",
		StarClass:        "race_star",
		RecommendedClass: "recommended_badge",
		SkillTileClass:   "skill_tile",
		SkillBuyClass:    "skill_buy_button",
		SkillGradeClasses: map[string]string{
			skills.GradeSingle: "grade_badge_single",
			skills.GradeDouble: "grade_badge_double",
		},
	}
}

// ReadSquares groups race_square detections into candidate squares,
// reading each title via OCR and counting enclosed star/recommended
// markers.
func (r *PerceptionReader) ReadSquares(ctx context.Context, frame *domain.Frame) ([]race.Square, error) {
	var out []race.Square
	for _, d := range frame.Detections {
		if d.Class != r.SquareClass {
			continue
		}
		reads, err := r.Perception.OCR(ctx, frame, d.Box, "")
		if err != nil {
			return nil, err
		}
		out = append(out, race.Square{
			Title:       bestText(reads),
			Stars:       countWithin(frame.Detections, d.Box, r.StarClass),
			Recommended: countWithin(frame.Detections, d.Box, r.RecommendedClass) > 0,
			Box:         d.Box,
		})
	}
	return out, nil
}

// ViewResultsActive reports whether a non-greyed "View Results" affordance
// is present, distinguished by detection confidence the way buyAffordance
// distinguishes an active BUY button from a greyed one.
func (r *PerceptionReader) ViewResultsActive(ctx context.Context, frame *domain.Frame) (bool, domain.Box, error) {
	for _, d := range frame.Detections {
		if d.Class == "view_results_button" && d.Confidence >= 0.5 {
			return true, d.Box, nil
		}
	}
	return false, domain.Box{}, nil
}

// LossDetected reports whether a loss marker detection is present on the
// results screen.
func (r *PerceptionReader) LossDetected(ctx context.Context, frame *domain.Frame) (bool, error) {
	for _, d := range frame.Detections {
		if d.Class == "loss_marker" {
			return true, nil
		}
	}
	return false, nil
}

// ReadTiles resolves skills-shop tiles from skill_tile detections, reading
// each tile's title via OCR and its grade from whichever grade badge
// class is enclosed.
func (r *PerceptionReader) ReadTiles(ctx context.Context, frame *domain.Frame) ([]skills.Tile, error) {
	var out []skills.Tile
	for _, d := range frame.Detections {
		if d.Class != r.SkillTileClass {
			continue
		}
		reads, err := r.Perception.OCR(ctx, frame, d.Box, "")
		if err != nil {
			return nil, err
		}
		var grade string
		for g, class := range r.SkillGradeClasses {
			if countWithin(frame.Detections, d.Box, class) > 0 {
				grade = g
				break
			}
		}
		buyBox, buyActive := buyAffordance(frame.Detections, d.Box, r.SkillBuyClass)
		out = append(out, skills.Tile{
			Title:     bestText(reads),
			Grade:     grade,
			BuyBox:    buyBox,
			BuyActive: buyActive,
		})
	}
	return out, nil
}

func bestText(reads []domain.OCRResult) string {
	var best domain.OCRResult
	for _, r := range reads {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return strings.TrimSpace(best.Text)
}

func countWithin(dets []domain.Detection, box domain.Box, class string) int {
	n := 0
	for _, d := range dets {
		if d.Class != class {
			continue
		}
		cx, cy := (d.Box.X1+d.Box.X2)/2, (d.Box.Y1+d.Box.Y2)/2
		if cx >= box.X1 && cx <= box.X2 && cy >= box.Y1 && cy <= box.Y2 {
			n++
		}
	}
	return n
}

func buyAffordance(dets []domain.Detection, tileBox domain.Box, class string) (domain.Box, bool) {
	for _, d := range dets {
		if d.Class != class {
			continue
		}
		cx, cy := (d.Box.X1+d.Box.X2)/2, (d.Box.Y1+d.Box.Y2)/2
		if cx >= tileBox.X1 && cx <= tileBox.X2 && cy >= tileBox.Y1 && cy <= tileBox.Y2 {
			return d.Box, d.Confidence >= 0.5
		}
	}
	return domain.Box{}, false
}

// #endregion

// #region training tile discovery

// TrainingBoxConfig maps a stat key to the detection class marking that
// stat's tile on the Training screen, plus a per-stat failure-percent OCR
// region. Scenario-specific wiring, not a scoring tunable.
type TrainingBoxConfig struct {
	TileClassByStat map[domain.StatKey]string
	FailureROI      map[domain.StatKey]domain.Box
}

// ReadTrainingTiles resolves every configured stat's tile box from frame
// detections and extracts tiles.Features for each, skipping stats whose
// tile isn't present this tick (the trainee may not have unlocked every
// training type yet).
func ReadTrainingTiles(ctx context.Context, perception ports.Perception, cfg TrainingBoxConfig, frame *domain.Frame) ([]tiles.Features, error) {
	extractor := tiles.NewExtractor(perception, cfg.FailureROI)
	var out []tiles.Features
	for _, stat := range domain.AllStatKeys {
		class, ok := cfg.TileClassByStat[stat]
		if !ok {
			continue
		}
		box, found := firstBox(frame.Detections, class)
		if !found {
			continue
		}
		f, err := extractor.Extract(ctx, frame, stat, box)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func firstBox(dets []domain.Detection, class string) (domain.Box, bool) {
	for _, d := range dets {
		if d.Class == class {
			return d.Box, true
		}
	}
	return domain.Box{}, false
}

// #endregion

// #region pal reads

// PalClassConfig names the detection classes that resolve PAL chain state:
// the icon itself, a badge per advertised chain step, and a marker shown
// when the next step's reward is energy.
type PalClassConfig struct {
	IconClass             string
	ChainStepClasses      map[int]string
	NextEnergyMarkerClass string
}

// ReadPalState reports whether the PAL icon is present this tick and, if
// so, its advertised chain step and whether the next step yields energy
// (spec §3's PAL memory fields). Callers persist the result through
// memory.PalMemory.Record.
func ReadPalState(frame *domain.Frame, cfg PalClassConfig) (iconPresent bool, chainStep int, nextStepYieldsEnergy bool) {
	if cfg.IconClass == "" || !hasClass(frame, cfg.IconClass) {
		return false, 0, false
	}
	for step, class := range cfg.ChainStepClasses {
		if hasClass(frame, class) {
			chainStep = step
			break
		}
	}
	nextStepYieldsEnergy = cfg.NextEnergyMarkerClass != "" && hasClass(frame, cfg.NextEnergyMarkerClass)
	return true, chainStep, nextStepYieldsEnergy
}

// #endregion

// #region scalar reads

// ReadEnergy OCRs the configured energy ROI and parses the integer before
// the first '/' or space (e.g. "80/100" -> 80). Text that does not parse
// as an integer reads as 0 with a nil error.
func ReadEnergy(ctx context.Context, perception ports.Perception, frame *domain.Frame, roi domain.Box) (int, error) {
	reads, err := perception.OCR(ctx, frame, roi, "0123456789/")
	if err != nil {
		return 0, err
	}
	text := bestText(reads)
	cut := strings.IndexAny(text, "/ ")
	if cut >= 0 {
		text = text[:cut]
	}
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, nil
	}
	return v, nil
}

// #endregion
