// Command inspect prints the current skill, PAL, and planned-race memory
// contents for a career database, for operator debugging between runs.
// Grounded in the teacher's cmd/inspect/main.go (flag-driven sqlite
// read + JSON print of persisted state).
package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/umaplay/career-agent/internal/memory"
)

// #endregion

func main() {
	dbPath := flag.String("db", "career.db", "path to the sqlite career database")
	flag.Parse()

	db, err := memory.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
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
	plannedIndex, err := memory.NewPlannedRaceIndex(db, nil)
	if err != nil {
		log.Fatalf("planned race index: %v", err)
	}

	purchased, err := skillMem.All()
	if err != nil {
		log.Fatalf("list skill memory: %v", err)
	}
	pal, err := palMem.All()
	if err != nil {
		log.Fatalf("list pal memory: %v", err)
	}
	cooldowns, err := plannedIndex.Cooldowns()
	if err != nil {
		log.Fatalf("list planned race cooldowns: %v", err)
	}

	out := struct {
		Skills           []memory.Purchased `json:"skills"`
		Pal              []memory.PalRecord `json:"pal"`
		PlannedRaceSkips []memory.Cooldown  `json:"planned_race_skip_guards"`
	}{purchased, pal, cooldowns}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Fprintf(os.Stderr, "inspect: %d skills, %d pal records, %d active skip guards\n", len(purchased), len(pal), len(cooldowns))
}
