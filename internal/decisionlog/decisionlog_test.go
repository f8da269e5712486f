package decisionlog

import (
	"testing"

	"github.com/umaplay/career-agent/internal/memory"
)

func TestLogRecordAssignsTurnID(t *testing.T) {
	db, err := memory.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer db.Close()

	l, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := l.Record(Entry{EventKind: "[skills]", Decision: "no_match", Reason: "no allow-list intersection"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var turnID, reason string
	row := db.QueryRow(`SELECT turn_id, reason FROM decision_log WHERE event_kind = '[skills]'`)
	if err := row.Scan(&turnID, &reason); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if turnID == "" {
		t.Fatal("expected auto-assigned turn id")
	}
	if reason != "no allow-list intersection" {
		t.Fatalf("reason = %q", reason)
	}
}

func TestCounters(t *testing.T) {
	c := NewCounters()
	c.IncRelaxedClassification()
	c.IncRelaxedClassification()
	c.IncSoftFail("no_race_found")
	c.IncSoftFail("no_race_found")
	c.IncSoftFail("buttons_missing")

	relaxed, softFails := c.Snapshot()
	if relaxed != 2 {
		t.Fatalf("relaxed = %d, want 2", relaxed)
	}
	if softFails["no_race_found"] != 2 || softFails["buttons_missing"] != 1 {
		t.Fatalf("softFails = %+v", softFails)
	}
}
