package bridge

import (
	"testing"

	"github.com/umaplay/career-agent/internal/ports"
)

func TestDefaultPollConfigsCoversEveryControllerKind(t *testing.T) {
	cfgs := DefaultPollConfigs()
	kinds := []ports.ControllerKind{
		ports.ControllerDesktop,
		ports.ControllerDeviceMirroring,
		ports.ControllerRemoteBridge,
		ports.ControllerFixture,
	}
	for _, k := range kinds {
		cfg, ok := cfgs[k]
		if !ok {
			t.Fatalf("missing poll config for %q", k)
		}
		if cfg.Interval <= 0 || cfg.OverallTimeout <= 0 || cfg.AttemptTimeout <= 0 {
			t.Fatalf("zero-valued poll config for %q: %+v", k, cfg)
		}
	}
}

func TestDefaultPollConfigsRemoteBridgeTolerance(t *testing.T) {
	cfgs := DefaultPollConfigs()
	remote := cfgs[ports.ControllerRemoteBridge]
	desktop := cfgs[ports.ControllerDesktop]
	if remote.AttemptTimeout <= desktop.AttemptTimeout {
		t.Fatalf("expected remote bridge attempt timeout to exceed desktop's: remote=%d desktop=%d", remote.AttemptTimeout, desktop.AttemptTimeout)
	}
}
