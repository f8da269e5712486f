package memory

// #region imports
import (
	"database/sql"
	"fmt"

	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region schema

const plannedRaceCooldownSchema = `
CREATE TABLE IF NOT EXISTS planned_race_cooldown (
	date_key TEXT PRIMARY KEY,
	cooldown INTEGER NOT NULL DEFAULT 0
);
`

// #endregion

// #region store

// PlannedRaceIndex resolves the preset's Date -> race-name schedule while
// enforcing the skip-guard cooldown invariant of spec §3/§8: after a failed
// match, a date is skipped for a bounded number of ticks to avoid
// oscillating retries on the same planned race.
type PlannedRaceIndex struct {
	db     *sql.DB
	races  map[domain.Date]domain.PlannedRaceEntry
}

// NewPlannedRaceIndex migrates the cooldown table and binds it to the
// preset's read-only race schedule.
func NewPlannedRaceIndex(db *sql.DB, races map[domain.Date]domain.PlannedRaceEntry) (*PlannedRaceIndex, error) {
	if _, err := db.Exec(plannedRaceCooldownSchema); err != nil {
		return nil, fmt.Errorf("migrate planned_race_cooldown: %w", err)
	}
	return &PlannedRaceIndex{db: db, races: races}, nil
}

// RaceFor returns the scheduled race for date, unless its cooldown is still
// positive, in which case it is treated as absent.
func (idx *PlannedRaceIndex) RaceFor(date domain.Date) (domain.PlannedRaceEntry, bool, error) {
	cooldown, err := idx.cooldown(date)
	if err != nil {
		return domain.PlannedRaceEntry{}, false, err
	}
	if cooldown > 0 {
		return domain.PlannedRaceEntry{}, false, nil
	}
	entry, ok := idx.races[date]
	return entry, ok, nil
}

// MarkSkipped sets date's skip-guard cooldown after a failed match attempt.
func (idx *PlannedRaceIndex) MarkSkipped(date domain.Date, cooldown int) error {
	_, err := idx.db.Exec(`
		INSERT INTO planned_race_cooldown (date_key, cooldown) VALUES (?, ?)
		ON CONFLICT(date_key) DO UPDATE SET cooldown = excluded.cooldown`,
		date.String(), cooldown,
	)
	if err != nil {
		return fmt.Errorf("mark skipped %s: %w", date, err)
	}
	return nil
}

// Tick decrements every outstanding cooldown by one, floored at zero. Call
// once per agent tick.
func (idx *PlannedRaceIndex) Tick() error {
	_, err := idx.db.Exec(`UPDATE planned_race_cooldown SET cooldown = MAX(cooldown - 1, 0) WHERE cooldown > 0`)
	if err != nil {
		return fmt.Errorf("tick cooldowns: %w", err)
	}
	return nil
}

func (idx *PlannedRaceIndex) cooldown(date domain.Date) (int, error) {
	var cd int
	err := idx.db.QueryRow(`SELECT cooldown FROM planned_race_cooldown WHERE date_key = ?`, date.String()).Scan(&cd)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cooldown %s: %w", date, err)
	}
	return cd, nil
}

// Cooldown is one date's outstanding skip-guard cooldown, for operator
// inspection.
type Cooldown struct {
	DateKey  string
	Cooldown int
}

// Cooldowns lists every date with a still-positive skip-guard cooldown,
// for cmd/inspect.
func (idx *PlannedRaceIndex) Cooldowns() ([]Cooldown, error) {
	rows, err := idx.db.Query(`SELECT date_key, cooldown FROM planned_race_cooldown WHERE cooldown > 0 ORDER BY date_key`)
	if err != nil {
		return nil, fmt.Errorf("list planned race cooldowns: %w", err)
	}
	defer rows.Close()
	var out []Cooldown
	for rows.Next() {
		var c Cooldown
		if err := rows.Scan(&c.DateKey, &c.Cooldown); err != nil {
			return nil, fmt.Errorf("scan planned race cooldown row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// #endregion
