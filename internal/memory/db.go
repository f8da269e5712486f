// Package memory implements the three persistent cross-turn stores named
// in spec §3/§4.5: skill memory, PAL chain memory, and the planned-race
// index. They share one *sql.DB, opened the way internal/state.NewStore
// opens its database (WAL + foreign_keys pragmas).
package memory

// #region imports
import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// #endregion

// #region open

// OpenDB opens (or creates) the career database at path with the pragmas
// the rest of this package's schemas rely on.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}
	return db, nil
}

// #endregion
