// Command agent is the career-loop entrypoint (spec §4.11, §6, §9):
// load config, open the persistent stores, wire the active scenario's
// policy and its grpc controller+perception backend (controller_kind
// fixture is rejected at startup; it belongs to cmd/replay), then tick
// the loop until the hotkey stop flag trips or a fatal outcome occurs.
// Grounded in cmd/controller/main.go's top-level wiring shape (parse
// flags, open stores, build the coordinator, loop until stdin/stop
// signals exit) adapted from a stdin-toggle REPL to a hotkey-driven
// career runner.
package main

// #region imports
import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/umaplay/career-agent/internal/agent"
	"github.com/umaplay/career-agent/internal/bridge"
	"github.com/umaplay/career-agent/internal/catalog"
	"github.com/umaplay/career-agent/internal/config"
	"github.com/umaplay/career-agent/internal/decisionlog"
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/memory"
	"github.com/umaplay/career-agent/internal/ports"
	"github.com/umaplay/career-agent/internal/race"
	"github.com/umaplay/career-agent/internal/scenario"
	"github.com/umaplay/career-agent/internal/scenario/ura"
	"github.com/umaplay/career-agent/internal/scenario/unitycup"
	"github.com/umaplay/career-agent/internal/skills"
)

// #endregion

func main() {
	configPath := flag.String("config", "config.yaml", "path to the agent config document")
	presetName := flag.String("preset", "default", "preset name under the active scenario")
	dbPath := flag.String("db", "career.db", "path to the sqlite career database")
	snapshotPath := flag.String("catalog", "", "path to a local catalog snapshot JSON file")
	grpcAddr := flag.String("grpc-addr", "127.0.0.1:50051", "address of the device-mirroring/remote-bridge backend")
	tickInterval := flag.Duration("tick-interval", 2*time.Second, "delay between agent ticks")
	flag.Parse()

	loader, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	doc := loader.Current()

	registry := scenario.NewRegistry()
	registry.Register(ura.New())
	registry.Register(unitycup.New())
	policy, err := registry.Lookup(doc.General.ScenarioKey())
	if err != nil {
		log.Fatalf("scenario: %v", err)
	}

	preset, ok := doc.PresetByName(doc.General.ScenarioKey(), *presetName)
	if !ok {
		log.Fatalf("config: preset %q not found under scenario %q", *presetName, doc.General.ScenarioKey())
	}
	if !doc.General.ScenarioConfirmed {
		log.Fatalf("config: scenario_confirmed is false; refusing to run against an unreviewed preset")
	}

	db, err := memory.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("memory: %v", err)
	}
	defer db.Close()

	skillMem, err := memory.NewSkillMemory(db)
	if err != nil {
		log.Fatalf("skill memory: %v", err)
	}
	palMem, err := memory.NewPalMemory(db)
	if err != nil {
		log.Fatalf("pal memory: %v", err)
	}
	plannedIndex, err := memory.NewPlannedRaceIndex(db, preset.PlannedRaces)
	if err != nil {
		log.Fatalf("planned race index: %v", err)
	}
	decisionLog, err := decisionlog.New(db)
	if err != nil {
		log.Fatalf("decision log: %v", err)
	}

	cat := catalog.New(catalog.DefaultConfig())
	if *snapshotPath != "" {
		if err := cat.LoadSnapshotFile(*snapshotPath); err != nil {
			log.Fatalf("catalog: %v", err)
		}
	}

	kind := doc.General.ControllerKindValue()
	var backend interface {
		ports.Controller
		ports.Perception
	}
	switch kind {
	case ports.ControllerFixture:
		log.Fatalf("controller_kind=fixture is for cmd/replay, not a live career run")
	default:
		gb, err := bridge.NewGrpcBridge(*grpcAddr)
		if err != nil {
			log.Fatalf("grpc bridge: %v", err)
		}
		defer gb.Close()
		backend = gb
	}

	stop := &atomic.Bool{}
	installHotkeyStop(stop)

	// Detection-class names (race/skills button classes, training tile
	// classes, event option classes) are deployer-specific vocabulary
	// tied to the perception backend's label set (spec §3's "closed
	// vocabulary" is closed per deployment, not fixed by this spec) and
	// belong in a config extension beyond general/scenarios.<key>.presets
	// — left as the zero value here the same way CurrentMood/
	// dateFromPreset are named placeholders in internal/agent/loop.go.
	loop := agent.New(agent.Config{
		Controller:     backend,
		Perception:     backend,
		Stop:           stop,
		Policy:         policy,
		Preset:         preset,
		Catalog:        cat,
		SkillMemory:    skillMem,
		PalMemory:      palMem,
		PlannedIndex:   plannedIndex,
		DecisionLog:    decisionLog,
		Counters:       decisionlog.NewCounters(),
		EnergyCap:      100,
		AutoRestMin:    doc.General.AutoRestMinEnergy,
		CurrentMood:    preset.MinMood,
		RaceConfig:     race.Config{},
		SkillsConfig:   skills.Config{},
		StallThreshold: 20,
	})

	ctx := context.Background()
	for !stop.Load() {
		outcome := loop.Tick(ctx)
		if outcome.Kind == domain.OutcomeHardFail {
			fmt.Fprintf(os.Stderr, "agent: fatal: %s\n", outcome.Reason)
			os.Exit(1)
		}
		time.Sleep(*tickInterval)
	}
	log.Println("agent: stopped")
}

// installHotkeyStop runs the hotkey-monitor thread (spec §5: "a separate
// thread owns the hotkey monitor and sets a shared stop flag"), here
// wired to SIGINT/SIGTERM in place of an in-game hotkey listener.
func installHotkeyStop(stop *atomic.Bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		stop.Store(true)
	}()
}
