package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetStamp returns the cached stamp for path when it was recorded for the
// same checksum. A missing or outdated row yields nil without error.
func (db *DB) GetStamp(path, checksum string) (*CommitStamp, error) {
	var ts sql.NullInt64
	err := db.conn.QueryRow(
		`SELECT committed_ts FROM commit_stamps WHERE path = ? AND checksum = ?`,
		path, checksum,
	).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get stamp: %w", err)
	}
	s := &CommitStamp{Path: path, Checksum: checksum}
	if ts.Valid {
		v := ts.Int64
		s.CommittedTS = &v
	}
	return s, nil
}

// PutStamp inserts or replaces the stamp for s.Path.
func (db *DB) PutStamp(s CommitStamp) error {
	var ts sql.NullInt64
	if s.CommittedTS != nil {
		ts = sql.NullInt64{Int64: *s.CommittedTS, Valid: true}
	}
	_, err := db.conn.Exec(`
		INSERT INTO commit_stamps (path, checksum, committed_ts, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum     = excluded.checksum,
			committed_ts = excluded.committed_ts,
			updated_at   = excluded.updated_at
	`, s.Path, s.Checksum, ts, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: put stamp: %w", err)
	}
	return nil
}

// DeleteStamp removes the row for path.
func (db *DB) DeleteStamp(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM commit_stamps WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete stamp: %w", err)
	}
	return nil
}

// AllChecksums returns a map of path → checksum for every cached row.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM commit_stamps`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
