// Package ports declares the external-collaborator interfaces the core
// depends on but does not implement: frame capture/input emission
// (Controller) and object detection/OCR (Perception). Concrete backends
// live in internal/bridge.
package ports

// #region imports
import (
	"context"

	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region controller-kind

// ControllerKind distinguishes backends for per-backend tuning (spec §4.1).
type ControllerKind string

const (
	ControllerDesktop         ControllerKind = "desktop"
	ControllerDeviceMirroring ControllerKind = "device_mirroring"
	ControllerRemoteBridge    ControllerKind = "remote_bridge"
	ControllerFixture         ControllerKind = "fixture"
)

// #endregion

// #region controller

// Controller captures frames and emits synthetic input. Clicks are ordered
// with respect to subsequent captures: a capture started after a click
// observes post-click state, assuming the UI settles.
type Controller interface {
	Capture(ctx context.Context) (*domain.Frame, error)
	Click(ctx context.Context, x, y int) error
	Scroll(ctx context.Context, fromX, fromY, toX, toY, dy int) error
	ControllerKind() ControllerKind
}

// #endregion

// #region perception

// Perception returns labeled detections and OCR reads for a frame. The
// core treats it as a pure function of the given frame and must not
// assume the backend is thread-safe.
type Perception interface {
	Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error)
	OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error)
}

// #endregion
