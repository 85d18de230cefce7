package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/brandon/inboxd/pkg/types"
)

// ReadSnapshot returns the stored fetch snapshot for an account, or nil if
// none exists yet.
func (s *Store) ReadSnapshot(accountID int64) (*types.Snapshot, error) {
	query := "SELECT filters, message_ids, summaries FROM fetch_cache WHERE account_id = ?"

	var filtersJSON, idsJSON, summariesJSON string
	err := s.db.QueryRow(query, accountID).Scan(&filtersJSON, &idsJSON, &summariesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snap := &types.Snapshot{AccountID: accountID}
	if err := json.Unmarshal([]byte(filtersJSON), &snap.Filters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot filters: %w", err)
	}
	if err := json.Unmarshal([]byte(idsJSON), &snap.MessageIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot message ids: %w", err)
	}
	if err := json.Unmarshal([]byte(summariesJSON), &snap.Summaries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot summaries: %w", err)
	}

	return snap, nil
}

// WriteSnapshot replaces the fetch snapshot for an account. The unique
// constraint on account_id guarantees at most one row per account.
func (s *Store) WriteSnapshot(accountID int64, filters []string, ids []uint32, summaries []types.MessageSummary) error {
	filtersJSON, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot filters: %w", err)
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot message ids: %w", err)
	}
	summariesJSON, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot summaries: %w", err)
	}

	query := `
		INSERT INTO fetch_cache (account_id, filters, message_ids, summaries, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(account_id) DO UPDATE SET
			filters = excluded.filters,
			message_ids = excluded.message_ids,
			summaries = excluded.summaries,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, accountID, string(filtersJSON), string(idsJSON), string(summariesJSON)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}
