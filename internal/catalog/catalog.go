// Package catalog holds the read-only skill/race/event lookups named in
// spec §6: dataset content the core treats as static, consumed via
// in-memory indexes built from a local JSON snapshot and optionally
// refreshed from a configured HTTP endpoint. Grounded in
// internal/websearch's net/http + encoding/json fetch-with-timeout pattern
// and Config/DefaultConfig pair, repurposed from ad hoc web search to a
// periodic catalog pull with an embedded-snapshot fallback.
package catalog

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/umaplay/career-agent/internal/decider"
	"github.com/umaplay/career-agent/internal/domain"
	"github.com/umaplay/career-agent/internal/matcher"
)

// #endregion

// #region entries

// SkillEntry is one skill-shop catalog entry: its canonical name plus the
// disambiguation tokens needed to match it against OCR'd tile titles
// (spec §4.8's "non-standard" vs "standard" trap).
type SkillEntry struct {
	Name           string   `json:"name"`
	PositiveTokens []string `json:"positive_tokens"`
	NegativeTokens []string `json:"negative_tokens"`
}

// RaceKind distinguishes a race's retry semantics (DESIGN.md Open
// Question #2: loss-retry is configured per race kind via this field
// rather than a single global toggle).
type RaceKind string

const (
	RaceKindGoal     RaceKind = "goal"
	RaceKindOptional RaceKind = "optional"
	RaceKindFans     RaceKind = "fans"
)

// RaceEntry is one race-index row, keyed by date.
type RaceEntry struct {
	Date domain.Date `json:"date"`
	Name string      `json:"name"`
	Kind RaceKind    `json:"kind"`
}

// EventOption is one JSON-serializable event-catalog option outcome,
// mirroring decider.OptionOutcome.
type EventOption struct {
	StatsDelta  domain.StatVector `json:"stats_delta"`
	EnergyDelta int               `json:"energy_delta"`
	MoodDelta   int               `json:"mood_delta"`
	Hints       []string          `json:"hints"`
	SkillPoints int               `json:"skill_points"`
	Status      string            `json:"status"`
}

func (o EventOption) toOutcome() decider.OptionOutcome {
	return decider.OptionOutcome{
		StatsDelta:  o.StatsDelta,
		EnergyDelta: o.EnergyDelta,
		MoodDelta:   o.MoodDelta,
		Hints:       o.Hints,
		SkillPoints: o.SkillPoints,
		Status:      o.Status,
	}
}

// EventEntry is one event-catalog row, keyed by "type/name/attr/rarity/event#step".
type EventEntry struct {
	Key     string        `json:"key"`
	Options []EventOption `json:"options"`
}

// #endregion

// #region snapshot

// Snapshot is the JSON document shape for both the embedded fallback and
// the refresh-endpoint response.
type Snapshot struct {
	Skills []SkillEntry `json:"skills"`
	Races  []RaceEntry  `json:"races"`
	Events []EventEntry `json:"events"`
}

// #endregion

// #region config

// Config holds the catalog refresh parameters.
type Config struct {
	RefreshURL string
	Timeout    time.Duration
}

// DefaultConfig returns a disabled-refresh config: snapshot-only until a
// RefreshURL is set.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// #endregion

// #region catalog

// Catalog is the in-memory set of indexes behind an RWMutex. Reads take the
// read lock and a Refresh swaps the indexes under the write lock, so a
// reader may wait for the swap but never sees a half-updated index.
type Catalog struct {
	cfg Config

	mu      sync.RWMutex
	skills  []SkillEntry
	races   map[domain.Date]RaceEntry
	events  map[string][]decider.OptionOutcome
}

// New builds an empty Catalog bound to cfg.
func New(cfg Config) *Catalog {
	return &Catalog{cfg: cfg, races: map[domain.Date]RaceEntry{}, events: map[string][]decider.OptionOutcome{}}
}

// LoadSnapshotFile reads and indexes a local JSON snapshot file, the
// embedded-fallback path named in spec §6.
func (c *Catalog) LoadSnapshotFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: read snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("catalog: parse snapshot %s: %w", path, err)
	}
	c.index(snap)
	return nil
}

// Refresh fetches a fresh snapshot from cfg.RefreshURL and swaps it in. A
// zero RefreshURL is a no-op, leaving the existing (snapshot-loaded)
// indexes in place.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.cfg.RefreshURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.RefreshURL, nil)
	if err != nil {
		return fmt.Errorf("catalog: build refresh request: %w", err)
	}
	client := &http.Client{Timeout: c.cfg.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: refresh status %d", resp.StatusCode)
	}
	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return fmt.Errorf("catalog: decode refresh response: %w", err)
	}
	c.index(snap)
	return nil
}

func (c *Catalog) index(snap Snapshot) {
	races := make(map[domain.Date]RaceEntry, len(snap.Races))
	for _, r := range snap.Races {
		races[r.Date] = r
	}
	events := make(map[string][]decider.OptionOutcome, len(snap.Events))
	for _, e := range snap.Events {
		opts := make([]decider.OptionOutcome, len(e.Options))
		for i, o := range e.Options {
			opts[i] = o.toOutcome()
		}
		events[e.Key] = opts
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills = snap.Skills
	c.races = races
	c.events = events
}

// #endregion

// #region reads

// SkillAllowList builds matcher.AllowEntry values for the subset of the
// skill catalog named in names (typically preset.SkillsToBuy), preserving
// names' order so the skills flow's scroll-scan matches in preset priority.
func (c *Catalog) SkillAllowList(names []string) []matcher.AllowEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	byName := make(map[string]SkillEntry, len(c.skills))
	for _, s := range c.skills {
		byName[s.Name] = s
	}

	out := make([]matcher.AllowEntry, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			continue
		}
		out = append(out, matcher.AllowEntry{
			Name:           s.Name,
			PositiveTokens: s.PositiveTokens,
			NegativeTokens: s.NegativeTokens,
		})
	}
	return out
}

// RaceKindFor returns the catalog's recorded kind for the race scheduled
// at date, if any.
func (c *Catalog) RaceKindFor(date domain.Date) (RaceKind, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.races[date]
	if !ok {
		return "", false
	}
	return entry.Kind, true
}

// EventOptions returns the option outcomes for an event catalog key
// ("type/name/attr/rarity/event#step", spec §6).
func (c *Catalog) EventOptions(key string) ([]decider.OptionOutcome, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts, ok := c.events[key]
	return opts, ok
}

// #endregion
