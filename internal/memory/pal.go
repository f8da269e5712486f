package memory

// #region imports
import (
	"database/sql"
	"fmt"
	"time"
)

// #endregion

// #region schema

const palStateSchema = `
CREATE TABLE IF NOT EXISTS pal_state (
	scenario                TEXT PRIMARY KEY,
	icon_present            INTEGER NOT NULL DEFAULT 0,
	chain_step              INTEGER NOT NULL DEFAULT 0,
	next_step_yields_energy INTEGER NOT NULL DEFAULT 0,
	updated_at              TEXT NOT NULL
);
`

// #endregion

// #region store

// PalMemory records, per scenario, whether the PAL icon is present and
// whether its advertised next chain step yields energy. Consulted before
// any decision that would otherwise pick Rest or Recreation (spec §4.5).
type PalMemory struct {
	db *sql.DB
}

// NewPalMemory migrates the pal_state table and returns a store.
func NewPalMemory(db *sql.DB) (*PalMemory, error) {
	if _, err := db.Exec(palStateSchema); err != nil {
		return nil, fmt.Errorf("migrate pal_state: %w", err)
	}
	return &PalMemory{db: db}, nil
}

// Record upserts this tick's PAL observation for scenario.
func (m *PalMemory) Record(scenario string, iconPresent bool, chainStep int, nextStepYieldsEnergy bool) error {
	_, err := m.db.Exec(`
		INSERT INTO pal_state (scenario, icon_present, chain_step, next_step_yields_energy, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(scenario) DO UPDATE SET
			icon_present = excluded.icon_present,
			chain_step = excluded.chain_step,
			next_step_yields_energy = excluded.next_step_yields_energy,
			updated_at = excluded.updated_at`,
		scenario, boolToInt(iconPresent), chainStep, boolToInt(nextStepYieldsEnergy),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record pal state %s: %w", scenario, err)
	}
	return nil
}

// AnyNextEnergy reports whether scenario's PAL is present and its next
// chain step yields energy — the gate for substituting Recreation-with-PAL
// for Rest.
func (m *PalMemory) AnyNextEnergy(scenario string) (bool, error) {
	var present, yields int
	err := m.db.QueryRow(
		`SELECT icon_present, next_step_yields_energy FROM pal_state WHERE scenario = ?`, scenario,
	).Scan(&present, &yields)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("any next energy %s: %w", scenario, err)
	}
	return present != 0 && yields != 0, nil
}

// ResetIfAbsent clears scenario's PAL record when the icon is no longer
// observed, per spec §3's "cleared when the icon disappears".
func (m *PalMemory) ResetIfAbsent(scenario string, iconPresent bool) error {
	if iconPresent {
		return nil
	}
	_, err := m.db.Exec(`DELETE FROM pal_state WHERE scenario = ?`, scenario)
	if err != nil {
		return fmt.Errorf("reset if absent %s: %w", scenario, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// PalRecord describes one scenario's current PAL state, for operator
// inspection.
type PalRecord struct {
	Scenario             string
	IconPresent          bool
	ChainStep            int
	NextStepYieldsEnergy bool
	UpdatedAt            string
}

// All lists the current PAL record for every scenario, for cmd/inspect.
func (m *PalMemory) All() ([]PalRecord, error) {
	rows, err := m.db.Query(`SELECT scenario, icon_present, chain_step, next_step_yields_energy, updated_at FROM pal_state ORDER BY scenario`)
	if err != nil {
		return nil, fmt.Errorf("list pal state: %w", err)
	}
	defer rows.Close()
	var out []PalRecord
	for rows.Next() {
		var r PalRecord
		var present, yields int
		if err := rows.Scan(&r.Scenario, &present, &r.ChainStep, &yields, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan pal state row: %w", err)
		}
		r.IconPresent = present != 0
		r.NextStepYieldsEnergy = yields != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion
