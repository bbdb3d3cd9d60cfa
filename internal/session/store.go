// Package session provides the in-process registry of archived email
// sessions. It is backed by an in-memory SQLite database: rows are
// addressable and queryable for the lifetime of the process and gone
// after it, which is exactly the persistence the assistant wants.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"eassistant/internal/types"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store is an append-only archive of EmailSessions. Ids are assigned
// by the database and are strictly increasing, starting at 1.
type Store struct {
	conn *sql.DB
}

// Open creates a fresh in-memory store.
func Open() (*Store, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	// A :memory: database exists per connection; keep the pool at one
	// so every statement sees the same database.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close releases the underlying connection and with it every archived row.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Archive stores an immutable snapshot and returns its assigned id.
// The snapshot's ID and ArchivedAt fields are filled in on success.
func (s *Store) Archive(snap *types.EmailSession) (int64, error) {
	if snap == nil {
		return 0, fmt.Errorf("archive: nil session")
	}

	var infoJSON any
	if snap.Info != nil {
		b, err := json.Marshal(snap.Info)
		if err != nil {
			return 0, fmt.Errorf("encode extracted info: %w", err)
		}
		infoJSON = string(b)
	}
	var draftsJSON any
	if len(snap.Drafts) > 0 {
		b, err := json.Marshal(snap.Drafts)
		if err != nil {
			return 0, fmt.Errorf("encode drafts: %w", err)
		}
		draftsJSON = string(b)
	}

	now := types.Now()
	res, err := s.conn.Exec(`
		INSERT INTO sessions
			(subject, sender, summary, state_at_archive, email_content, extracted_info, drafts, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.Subject, nullStr(snap.Sender), nullStr(snap.Summary),
		snap.StateAtArchive.String(), snap.EmailContent, infoJSON, draftsJSON, now,
	)
	if err != nil {
		return 0, fmt.Errorf("archive session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("archive session id: %w", err)
	}
	snap.ID = id
	snap.ArchivedAt = now
	return id, nil
}

// Get returns the archived session with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (*types.EmailSession, error) {
	es := &types.EmailSession{}
	var sender, summary, infoJSON, draftsJSON sql.NullString
	var stateLabel string
	err := s.conn.QueryRow(`
		SELECT id, subject, sender, summary, state_at_archive, email_content, extracted_info, drafts, archived_at
		FROM sessions
		WHERE id = ?`, id).Scan(
		&es.ID, &es.Subject, &sender, &summary, &stateLabel,
		&es.EmailContent, &infoJSON, &draftsJSON, &es.ArchivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}

	es.Sender = sender.String
	es.Summary = summary.String
	if st, perr := types.ParseState(stateLabel); perr == nil {
		es.StateAtArchive = st
	}
	if infoJSON.Valid {
		info := &types.ExtractedInfo{}
		if uerr := json.Unmarshal([]byte(infoJSON.String), info); uerr == nil {
			es.Info = info
		}
	}
	if draftsJSON.Valid {
		var drafts []string
		if uerr := json.Unmarshal([]byte(draftsJSON.String), &drafts); uerr == nil {
			es.Drafts = drafts
		}
	}
	return es, nil
}

// ListSummaries returns one line per archived session in archival order.
func (s *Store) ListSummaries() ([]types.SessionSummary, error) {
	rows, err := s.conn.Query(`
		SELECT id, subject, state_at_archive, archived_at
		FROM sessions
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var result []types.SessionSummary
	for rows.Next() {
		var sum types.SessionSummary
		var stateLabel string
		if err := rows.Scan(&sum.ID, &sum.Subject, &stateLabel, &sum.ArchivedAt); err != nil {
			return nil, err
		}
		if st, perr := types.ParseState(stateLabel); perr == nil {
			sum.State = st
		}
		result = append(result, sum)
	}
	return result, rows.Err()
}

// Count returns the number of archived sessions.
func (s *Store) Count() int {
	var n int
	s.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n)
	return n
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}
