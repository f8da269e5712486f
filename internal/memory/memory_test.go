package memory

import (
	"database/sql"
	"testing"

	"github.com/umaplay/career-agent/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSkillMemoryMarkPurchasedIdempotent(t *testing.T) {
	db := openTestDB(t)
	sm, err := NewSkillMemory(db)
	if err != nil {
		t.Fatalf("NewSkillMemory: %v", err)
	}

	if err := sm.MarkPurchased("Speed Star", "single"); err != nil {
		t.Fatalf("MarkPurchased: %v", err)
	}
	if err := sm.MarkPurchased("Speed Star", "single"); err != nil {
		t.Fatalf("MarkPurchased (repeat): %v", err)
	}

	purchased, err := sm.IsPurchased("Speed Star", "single")
	if err != nil || !purchased {
		t.Fatalf("IsPurchased = %v, %v; want true, nil", purchased, err)
	}

	any, err := sm.HasAnyGrade("Speed Star")
	if err != nil || !any {
		t.Fatalf("HasAnyGrade = %v, %v; want true, nil", any, err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM skill_memory`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row after idempotent double-mark, got %d", count)
	}
}

func TestSkillMemoryResetCareer(t *testing.T) {
	db := openTestDB(t)
	sm, _ := NewSkillMemory(db)
	_ = sm.MarkPurchased("X", "single")
	if err := sm.ResetCareer(); err != nil {
		t.Fatalf("ResetCareer: %v", err)
	}
	purchased, _ := sm.IsPurchased("X", "single")
	if purchased {
		t.Fatal("expected purchase cleared after ResetCareer")
	}
}

func TestPalMemoryAnyNextEnergy(t *testing.T) {
	db := openTestDB(t)
	pm, err := NewPalMemory(db)
	if err != nil {
		t.Fatalf("NewPalMemory: %v", err)
	}

	any, _ := pm.AnyNextEnergy("ura")
	if any {
		t.Fatal("expected false before any record")
	}

	if err := pm.Record("ura", true, 3, true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	any, err = pm.AnyNextEnergy("ura")
	if err != nil || !any {
		t.Fatalf("AnyNextEnergy = %v, %v; want true, nil", any, err)
	}

	if err := pm.ResetIfAbsent("ura", false); err != nil {
		t.Fatalf("ResetIfAbsent: %v", err)
	}
	any, _ = pm.AnyNextEnergy("ura")
	if any {
		t.Fatal("expected cleared after icon absent")
	}
}

func TestPlannedRaceIndexSkipGuard(t *testing.T) {
	db := openTestDB(t)
	date := domain.Date{Year: domain.YearSenior, Month: 6, Half: 2}
	races := map[domain.Date]domain.PlannedRaceEntry{
		date: {Name: "Takarazuka Kinen", Tentative: false},
	}
	idx, err := NewPlannedRaceIndex(db, races)
	if err != nil {
		t.Fatalf("NewPlannedRaceIndex: %v", err)
	}

	entry, ok, err := idx.RaceFor(date)
	if err != nil || !ok || entry.Name != "Takarazuka Kinen" {
		t.Fatalf("RaceFor = %+v, %v, %v", entry, ok, err)
	}

	if err := idx.MarkSkipped(date, 2); err != nil {
		t.Fatalf("MarkSkipped: %v", err)
	}
	_, ok, _ = idx.RaceFor(date)
	if ok {
		t.Fatal("expected race treated as absent right after skip")
	}

	_ = idx.Tick()
	_, ok, _ = idx.RaceFor(date)
	if ok {
		t.Fatal("expected still absent after one tick (cooldown=1)")
	}

	_ = idx.Tick()
	entry, ok, err = idx.RaceFor(date)
	if err != nil || !ok || entry.Name != "Takarazuka Kinen" {
		t.Fatalf("expected race available again after cooldown elapses, got %+v, %v, %v", entry, ok, err)
	}
}
