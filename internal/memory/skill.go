package memory

// #region imports
import (
	"database/sql"
	"fmt"
	"time"
)

// #endregion

// #region schema

const skillMemorySchema = `
CREATE TABLE IF NOT EXISTS skill_memory (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	grade       TEXT NOT NULL,
	purchased_at TEXT NOT NULL
);
`

const skillMemoryIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_skill_memory_name_grade
ON skill_memory(name, grade);
`

// #endregion

// #region store

// SkillMemory tracks which (name, grade) skills have been purchased this
// career. mark_purchased is idempotent by the (name, grade) unique index,
// so a retried buy never double-counts (spec §8 "No double-buy").
type SkillMemory struct {
	db *sql.DB
}

// NewSkillMemory migrates the skill_memory table and returns a store bound
// to db. Reload is implicit: every query reads the live table, so a
// restarted process sees the persisted snapshot as authoritative.
func NewSkillMemory(db *sql.DB) (*SkillMemory, error) {
	if _, err := db.Exec(skillMemorySchema); err != nil {
		return nil, fmt.Errorf("migrate skill_memory: %w", err)
	}
	if _, err := db.Exec(skillMemoryIndex); err != nil {
		return nil, fmt.Errorf("index skill_memory: %w", err)
	}
	return &SkillMemory{db: db}, nil
}

// MarkPurchased records (name, grade) as bought. Idempotent: a second call
// for the same pair is a no-op, never a duplicate row.
func (m *SkillMemory) MarkPurchased(name, grade string) error {
	_, err := m.db.Exec(
		`INSERT OR IGNORE INTO skill_memory (name, grade, purchased_at) VALUES (?, ?, ?)`,
		name, grade, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("mark purchased %s/%s: %w", name, grade, err)
	}
	return nil
}

// IsPurchased reports whether (name, grade) was already bought.
func (m *SkillMemory) IsPurchased(name, grade string) (bool, error) {
	var count int
	err := m.db.QueryRow(
		`SELECT COUNT(*) FROM skill_memory WHERE name = ? AND grade = ?`, name, grade,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("is purchased %s/%s: %w", name, grade, err)
	}
	return count > 0, nil
}

// HasAnyGrade reports whether name was bought at any grade, single-circle
// or double-circle.
func (m *SkillMemory) HasAnyGrade(name string) (bool, error) {
	var count int
	err := m.db.QueryRow(`SELECT COUNT(*) FROM skill_memory WHERE name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("has any grade %s: %w", name, err)
	}
	return count > 0, nil
}

// ResetCareer clears all purchase records, for a new career.
func (m *SkillMemory) ResetCareer() error {
	_, err := m.db.Exec(`DELETE FROM skill_memory`)
	if err != nil {
		return fmt.Errorf("reset career: %w", err)
	}
	return nil
}

// Purchased is one (name, grade) purchase record, for operator inspection.
type Purchased struct {
	Name        string
	Grade       string
	PurchasedAt string
}

// All lists every purchase recorded this career, for cmd/inspect.
func (m *SkillMemory) All() ([]Purchased, error) {
	rows, err := m.db.Query(`SELECT name, grade, purchased_at FROM skill_memory ORDER BY purchased_at`)
	if err != nil {
		return nil, fmt.Errorf("list skill memory: %w", err)
	}
	defer rows.Close()
	var out []Purchased
	for rows.Next() {
		var p Purchased
		if err := rows.Scan(&p.Name, &p.Grade, &p.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan skill memory row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// #endregion
