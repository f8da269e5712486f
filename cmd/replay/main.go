// Command replay runs a recorded fixture through the real agent.Loop for
// a bounded number of ticks and prints a decision summary, the offline
// regression tool operators use to check a policy/config change against
// previously captured footage before trusting it live. Grounded in
// cmd/fixture-export/main.go and cmd/inspect/main.go's flag-driven,
// load-then-report CLI shape.
package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/umaplay/career-agent/internal/agent"
	"github.com/umaplay/career-agent/internal/bridge"
	"github.com/umaplay/career-agent/internal/config"
	"github.com/umaplay/career-agent/internal/decisionlog"
	"github.com/umaplay/career-agent/internal/memory"
	"github.com/umaplay/career-agent/internal/race"
	"github.com/umaplay/career-agent/internal/replay"
	"github.com/umaplay/career-agent/internal/scenario"
	"github.com/umaplay/career-agent/internal/scenario/ura"
	"github.com/umaplay/career-agent/internal/scenario/unitycup"
	"github.com/umaplay/career-agent/internal/skills"
)

// #endregion

func main() {
	fixturePath := flag.String("fixture", "", "path to a bridge.FixtureRecording JSON file")
	configPath := flag.String("config", "config.yaml", "path to the agent config document")
	presetName := flag.String("preset", "default", "preset name under the active scenario")
	maxTicks := flag.Int("ticks", 50, "maximum ticks to replay")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "replay: -fixture is required")
		os.Exit(2)
	}

	rec, err := bridge.LoadFixtureRecording(*fixturePath)
	if err != nil {
		log.Fatalf("fixture: %v", err)
	}
	fb := bridge.NewFixtureBridge(rec)

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

	db, err := memory.OpenDB(":memory:")
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

	loop := agent.New(agent.Config{
		Controller:     fb,
		Perception:     fb,
		Stop:           &atomic.Bool{},
		Policy:         policy,
		Preset:         preset,
		SkillMemory:    skillMem,
		PalMemory:      palMem,
		PlannedIndex:   plannedIndex,
		Counters:       decisionlog.NewCounters(),
		EnergyCap:      100,
		AutoRestMin:    doc.General.AutoRestMinEnergy,
		CurrentMood:    preset.MinMood,
		RaceConfig:     race.Config{},
		SkillsConfig:   skills.Config{},
		StallThreshold: 0, // bounded externally by -ticks, not internal patience
	})

	results, summary := replay.Run(context.Background(), loop, *maxTicks)

	fmt.Printf("replay: %s (%d frames) -> %d ticks\n", rec.Description, len(rec.Frames), len(results))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		log.Fatalf("encode summary: %v", err)
	}
	if summary.HardFail != nil {
		os.Exit(1)
	}
}
