package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// SQLiteStore keeps one session's scans in a private in-memory SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	count  int
	closed bool
}

// NewSQLiteStore opens a fresh database. Nothing is written to disk.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// every pooled connection to :memory: would see its own empty database
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS scans (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		payload TEXT NOT NULL UNIQUE,
		verdict TEXT NOT NULL,
		scanned_at TEXT NOT NULL,
		source TEXT NOT NULL
	);`)
	return err
}

// Record inserts rec; a payload already in the table leaves it unchanged.
func (s *SQLiteStore) Record(rec domain.ScanRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	res, err := s.db.Exec(`INSERT INTO scans (payload, verdict, scanned_at, source)
		VALUES (?, ?, ?, ?) ON CONFLICT(payload) DO NOTHING`,
		rec.Payload,
		string(rec.Verdict),
		rec.ScannedAt.Format(time.RFC3339),
		string(rec.Source),
	)
	if err != nil {
		return false, fmt.Errorf("insert scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	s.count++
	return true, nil
}

func (s *SQLiteStore) Contains(payload string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM scans WHERE payload = ?`, payload).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot returns the records ordered by insertion.
func (s *SQLiteStore) Snapshot() ([]domain.ScanRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	rows, err := s.db.Query(`SELECT payload, verdict, scanned_at, source FROM scans ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.ScanRecord, 0, s.count)
	for rows.Next() {
		var payload, verdict, ts, source string
		if err := rows.Scan(&payload, &verdict, &ts, &source); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("scan %q: bad timestamp: %w", payload, err)
		}
		records = append(records, domain.NewScanRecord(payload, domain.Verdict(verdict), at, domain.Flow(source)))
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Close drops the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.count = 0
	return s.db.Close()
}

var _ ports.Ledger = (*SQLiteStore)(nil)
