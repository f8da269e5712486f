// Package decisionlog persists one row per classifier/gate/skills/race/
// event decision for operator curation, the way internal/logging.LogDecision
// persists provenance_log rows — here the logged decision is a screen
// classification, skill purchase, race-flow transition, or event choice
// rather than a state-update commit (spec §6 Observability).
package decisionlog

// #region imports
import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// #endregion

// #region schema

const decisionLogSchema = `
CREATE TABLE IF NOT EXISTS decision_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	turn_id    TEXT NOT NULL,
	event_kind TEXT NOT NULL,
	decision   TEXT NOT NULL,
	reason     TEXT,
	created_at TEXT NOT NULL
);
`

const decisionLogIndex = `
CREATE INDEX IF NOT EXISTS idx_decision_log_kind
ON decision_log(event_kind, created_at);
`

// #endregion

// #region entry

// Entry is one row: the kind of subsystem that decided (e.g. "[race]",
// "[skills]", "[planned_race]", "[event]", "[classifier]", "[waiter]"),
// what it decided, and why.
type Entry struct {
	TurnID    string
	EventKind string
	Decision  string
	Reason    string
	CreatedAt time.Time
}

// #endregion

// #region log

// Log persists a decision row, matching internal/logging.LogDecision's
// insert-and-format shape.
type Log struct {
	db *sql.DB
}

// New migrates the decision_log table and returns a Log bound to db.
func New(db *sql.DB) (*Log, error) {
	if _, err := db.Exec(decisionLogSchema); err != nil {
		return nil, fmt.Errorf("migrate decision_log: %w", err)
	}
	if _, err := db.Exec(decisionLogIndex); err != nil {
		return nil, fmt.Errorf("index decision_log: %w", err)
	}
	return &Log{db: db}, nil
}

// Record writes one decision entry, stamping CreatedAt if it is zero and
// TurnID with a fresh correlation id if empty.
func (l *Log) Record(entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.TurnID == "" {
		entry.TurnID = uuid.New().String()
	}
	_, err := l.db.Exec(
		`INSERT INTO decision_log (turn_id, event_kind, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.TurnID, entry.EventKind, entry.Decision, nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion

// #region counters

// Counters tallies fallback-relaxed classifications and soft-fail reasons
// in memory, per spec §6's Observability requirement.
type Counters struct {
	mu                   sync.Mutex
	relaxedClassified    int
	softFailByReason     map[string]int
}

// NewCounters builds an empty counter set.
func NewCounters() *Counters {
	return &Counters{softFailByReason: map[string]int{}}
}

// IncRelaxedClassification bumps the relaxed-classification tally.
func (c *Counters) IncRelaxedClassification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.relaxedClassified++
}

// IncSoftFail bumps the tally for a named soft-fail reason.
func (c *Counters) IncSoftFail(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.softFailByReason[reason]++
}

// Snapshot returns the current relaxed-classification count and a copy of
// the soft-fail-by-reason tally, safe to read concurrently with writers.
func (c *Counters) Snapshot() (relaxed int, softFails map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make(map[string]int, len(c.softFailByReason))
	for k, v := range c.softFailByReason {
		cp[k] = v
	}
	return c.relaxedClassified, cp
}

// #endregion
