package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/abrank/internal/shared"
	"github.com/desertthunder/abrank/internal/vote"
)

// VoteRepository implements vote.FallbackStore over SQLite.
type VoteRepository struct {
	db *sql.DB
}

var _ vote.FallbackStore = (*VoteRepository)(nil)

// NewVoteRepository creates a new VoteRepository with the given database connection
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Append inserts a vote record. Records are never updated or deleted.
func (r *VoteRepository) Append(rec vote.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode vote record: %w", err)
	}

	query := `
		INSERT INTO votes (id, session_id, seed_id, winning_source, payload, created_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		rec.SessionID,
		rec.SeedID,
		string(rec.WinningSource),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}

// List returns all stored records in insertion order.
func (r *VoteRepository) List() ([]vote.Record, error) {
	rows, err := r.db.Query(`SELECT payload FROM votes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	var records []vote.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}

		var rec vote.Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode vote payload: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vote row iteration failed: %w", err)
	}

	return records, nil
}

// CountBySeed returns the number of locally-stored votes per seed id.
func (r *VoteRepository) CountBySeed() (map[int]int, error) {
	rows, err := r.db.Query(`SELECT seed_id, COUNT(*) FROM votes GROUP BY seed_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	counts := map[int]int{}
	for rows.Next() {
		var seedID, n int
		if err := rows.Scan(&seedID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[seedID] = n
	}

	return counts, rows.Err()
}
