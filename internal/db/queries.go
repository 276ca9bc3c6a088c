package db

import (
	"context"
	"fmt"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

// InsertSnapshot records a point-in-time quota reading.
func (db *DB) InsertSnapshot(snap *models.QuotaSnapshot) error {
	query := `
		INSERT INTO quota_history (credential, provider, plan_name, percent_remaining, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		snap.Credential,
		string(snap.Provider),
		snap.PlanName,
		snap.PercentRemaining,
		timestamp.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snap.ID = id
	}

	return nil
}

// GetSnapshotSeries returns the readings for one credential over the
// given window, oldest first.
func (db *DB) GetSnapshotSeries(credential string, since time.Duration) ([]models.QuotaSnapshot, error) {
	query := `
		SELECT id, credential, provider, plan_name, percent_remaining, timestamp
		FROM quota_history
		WHERE credential = ? AND timestamp >= datetime('now', ?)
		ORDER BY timestamp ASC
	`

	modifier := fmt.Sprintf("-%d seconds", int(since.Seconds()))
	rows, err := db.QueryContext(context.Background(), query, credential, modifier)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []models.QuotaSnapshot
	for rows.Next() {
		var snap models.QuotaSnapshot
		var provider string

		err := rows.Scan(
			&snap.ID,
			&snap.Credential,
			&provider,
			&snap.PlanName,
			&snap.PercentRemaining,
			&snap.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snap.Provider = models.Provider(provider)
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

// GetTrackedCredentials returns the distinct credential names present
// in the history, most recently seen first.
func (db *DB) GetTrackedCredentials() ([]string, error) {
	query := `
		SELECT credential, MAX(timestamp) AS last_seen
		FROM quota_history
		GROUP BY credential
		ORDER BY last_seen DESC
	`

	rows, err := db.QueryContext(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked credentials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name, lastSeen string
		if err := rows.Scan(&name, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

// PruneOlderThan deletes readings older than the retention window and
// returns how many rows were removed.
func (db *DB) PruneOlderThan(retention time.Duration) (int64, error) {
	query := `DELETE FROM quota_history WHERE timestamp < datetime('now', ?)`

	modifier := fmt.Sprintf("-%d seconds", int(retention.Seconds()))
	result, err := db.ExecContext(context.Background(), query, modifier)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	return result.RowsAffected()
}
