package repositories

import (
	"database/sql"
	"fmt"
)

const votesSchema = `
CREATE TABLE IF NOT EXISTS votes (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	seed_id INTEGER NOT NULL,
	winning_source TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_votes_session_id ON votes(session_id);
CREATE INDEX IF NOT EXISTS idx_votes_seed_id ON votes(seed_id);
`

// Migrate creates the vote tables if they don't exist. Idempotent.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(votesSchema); err != nil {
		return fmt.Errorf("failed to run vote migrations: %w", err)
	}
	return nil
}
