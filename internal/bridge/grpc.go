// Package bridge provides the ports.Controller/ports.Perception backends
// named in spec §4.1/§4.2/§6: a GrpcBridge that talks to a remote capture
// and detection service, and a FixtureBridge that replays JSON-recorded
// frames for offline testing. Grounded in internal/codec/client.go's
// CodecClient, which bundles several RPCs over one grpc.ClientConn.
//
// The teacher's client depends on a gen/adaptive package generated from a
// .proto file that is not present anywhere in the retrieved pack, and
// protoc cannot be run here. Rather than fabricate a stub module behind a
// replace directive, GrpcBridge calls conn.Invoke directly with
// structpb.Struct request/response payloads: structpb.Struct is a real,
// pre-compiled proto.Message shipped in google.golang.org/protobuf, so
// this is genuine gRPC + protobuf wire traffic with zero generated code.
package bridge

// #region imports
import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/ports"
)

// #endregion

// #region rpc methods

const (
	methodCapture = "/career.agent.v1.CaptureService/Capture"
	methodClick   = "/career.agent.v1.CaptureService/Click"
	methodScroll  = "/career.agent.v1.CaptureService/Scroll"
	methodDetect  = "/career.agent.v1.CaptureService/Detect"
	methodOCR     = "/career.agent.v1.CaptureService/OCR"
)

// #endregion

// #region grpc bridge

// GrpcBridge implements both ports.Controller and ports.Perception over a
// single grpc.ClientConn, matching CodecClient's one-connection-many-RPCs
// shape. Each PollConfig is keyed by ControllerKind (DESIGN.md Open
// Question #1): a remote bridge backend tolerates longer round trips than
// a local desktop capture, so its patience/timeout knobs differ.
type GrpcBridge struct {
	conn *grpc.ClientConn
	kind ports.ControllerKind
	poll domain.PollConfig
}

// NewGrpcBridge dials addr and returns a GrpcBridge tagged as a remote
// bridge backend with the PollConfig DefaultPollConfigs assigns that kind.
func NewGrpcBridge(addr string) (*GrpcBridge, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("bridge: grpc dial %s: %w", addr, err)
	}
	return &GrpcBridge{
		conn: conn,
		kind: ports.ControllerRemoteBridge,
		poll: DefaultPollConfigs()[ports.ControllerRemoteBridge],
	}, nil
}

// Close shuts down the underlying connection.
func (b *GrpcBridge) Close() error {
	return b.conn.Close()
}

// ControllerKind reports the backend kind used to pick per-backend poll
// tuning (spec §4.1).
func (b *GrpcBridge) ControllerKind() ports.ControllerKind {
	return b.kind
}

// PollConfig returns this bridge's PollConfig.
func (b *GrpcBridge) PollConfig() domain.PollConfig {
	return b.poll
}

// Capture invokes the remote Capture RPC and reconstructs a domain.Frame,
// stashing the remote-side frame id in Frame.Opaque so a subsequent
// Detect/OCR call can ask the same backend to resolve it.
func (b *GrpcBridge) Capture(ctx context.Context) (*domain.Frame, error) {
	req, err := structpb.NewStruct(map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("bridge: build capture request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, methodCapture, req, resp); err != nil {
		return nil, fmt.Errorf("bridge: capture rpc: %w", err)
	}

	takenAt := int64(resp.Fields["taken_at_unix_milli"].GetNumberValue())
	frameID := resp.Fields["frame_id"].GetStringValue()

	frame := domain.NewFrame(takenAt, detectionsFromStruct(resp.Fields["detections"].GetListValue()))
	frame.Opaque = []byte(frameID)
	return frame, nil
}

// Click invokes the remote Click RPC at the given pixel coordinates.
func (b *GrpcBridge) Click(ctx context.Context, x, y int) error {
	req, err := structpb.NewStruct(map[string]any{"x": float64(x), "y": float64(y)})
	if err != nil {
		return fmt.Errorf("bridge: build click request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, methodClick, req, resp); err != nil {
		return fmt.Errorf("bridge: click rpc: %w", err)
	}
	return nil
}

// Scroll invokes the remote Scroll RPC, dragging from (fromX, fromY) to
// (toX, toY) in dy-sized steps (spec §4.8's scroll-scan primitive).
func (b *GrpcBridge) Scroll(ctx context.Context, fromX, fromY, toX, toY, dy int) error {
	req, err := structpb.NewStruct(map[string]any{
		"from_x": float64(fromX), "from_y": float64(fromY),
		"to_x": float64(toX), "to_y": float64(toY),
		"dy": float64(dy),
	})
	if err != nil {
		return fmt.Errorf("bridge: build scroll request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, methodScroll, req, resp); err != nil {
		return fmt.Errorf("bridge: scroll rpc: %w", err)
	}
	return nil
}

// Detect invokes the remote Detect RPC for the capture frame resolves to
// via Frame.Opaque.
func (b *GrpcBridge) Detect(ctx context.Context, frame *domain.Frame) ([]domain.Detection, error) {
	req, err := structpb.NewStruct(map[string]any{"frame_id": string(frame.Opaque)})
	if err != nil {
		return nil, fmt.Errorf("bridge: build detect request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, methodDetect, req, resp); err != nil {
		return nil, fmt.Errorf("bridge: detect rpc: %w", err)
	}
	return detectionsFromStruct(resp.Fields["detections"].GetListValue()), nil
}

// OCR invokes the remote OCR RPC over the given region of interest.
func (b *GrpcBridge) OCR(ctx context.Context, frame *domain.Frame, roi domain.Box, allowedCharset string) ([]domain.OCRResult, error) {
	req, err := structpb.NewStruct(map[string]any{
		"frame_id": string(frame.Opaque),
		"x1":       float64(roi.X1), "y1": float64(roi.Y1),
		"x2": float64(roi.X2), "y2": float64(roi.Y2),
		"allowed_charset": allowedCharset,
	})
	if err != nil {
		return nil, fmt.Errorf("bridge: build ocr request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, methodOCR, req, resp); err != nil {
		return nil, fmt.Errorf("bridge: ocr rpc: %w", err)
	}

	list := resp.Fields["results"].GetListValue()
	if list == nil {
		return nil, nil
	}
	out := make([]domain.OCRResult, 0, len(list.Values))
	for _, v := range list.Values {
		fields := v.GetStructValue().GetFields()
		out = append(out, domain.OCRResult{
			Text:       fields["text"].GetStringValue(),
			Confidence: float32(fields["confidence"].GetNumberValue()),
		})
	}
	return out, nil
}

func detectionsFromStruct(list *structpb.ListValue) []domain.Detection {
	if list == nil {
		return nil
	}
	out := make([]domain.Detection, 0, len(list.Values))
	for _, v := range list.Values {
		fields := v.GetStructValue().GetFields()
		out = append(out, domain.Detection{
			Class:      fields["class"].GetStringValue(),
			Confidence: float32(fields["confidence"].GetNumberValue()),
			Box: domain.Box{
				X1: int(fields["x1"].GetNumberValue()),
				Y1: int(fields["y1"].GetNumberValue()),
				X2: int(fields["x2"].GetNumberValue()),
				Y2: int(fields["y2"].GetNumberValue()),
			},
		})
	}
	return out
}

// #endregion

// #region poll config

// DefaultPollConfigs returns a PollConfig per ControllerKind (DESIGN.md
// Open Question #1): a remote bridge tolerates a longer attempt timeout
// than a local desktop or device-mirroring capture, since each poll
// attempt is a network round trip.
func DefaultPollConfigs() map[ports.ControllerKind]domain.PollConfig {
	return map[ports.ControllerKind]domain.PollConfig{
		ports.ControllerDesktop: {
			Interval: int64(200 * time.Millisecond), OverallTimeout: int64(20 * time.Second), AttemptTimeout: int64(2 * time.Second),
		},
		ports.ControllerDeviceMirroring: {
			Interval: int64(250 * time.Millisecond), OverallTimeout: int64(25 * time.Second), AttemptTimeout: int64(3 * time.Second),
		},
		ports.ControllerRemoteBridge: {
			Interval: int64(300 * time.Millisecond), OverallTimeout: int64(30 * time.Second), AttemptTimeout: int64(5 * time.Second),
		},
		ports.ControllerFixture: {
			Interval: int64(10 * time.Millisecond), OverallTimeout: int64(5 * time.Second), AttemptTimeout: int64(1 * time.Second),
		},
	}
}

// #endregion
