// Package journal records relay exchanges for diagnostics.
// The database is opened on Open and created if missing.
// If opening the DB or executing queries fails, the journal falls back to in-memory storage.
// Entries are never read back into a conversation.
package journal

import (
	"database/sql"
	"slices"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/comigor/jokebot-go/internal/logger"
)

// memoryLimit bounds the in-memory copy.
const memoryLimit = 1000

// Exchange is one relay round trip.
type Exchange struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	Message    string    `json:"message"`
	HistoryLen int       `json:"history_len"`
	Reply      string    `json:"reply"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Journal stores exchanges in SQLite when available and always keeps a bounded
// in-memory copy.
type Journal struct {
	mu        sync.Mutex
	exchanges []Exchange
	db        *sql.DB
}

// Open opens the journal at path. An empty path gives a memory-only journal.
func Open(path string) *Journal {
	j := &Journal{}
	if path == "" {
		return j
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(10000)")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory journal", "error", err)
		return j
	}
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS exchanges (
        id TEXT PRIMARY KEY,
        request_id TEXT,
        message TEXT,
        history_len INTEGER,
        reply TEXT,
        error TEXT,
        created_at DATETIME
    );`); err != nil {
		logger.L.Warn("sqlite table creation failed; using in-memory journal", "error", err)
		db.Close()
		return j
	}
	logger.L.Info("sqlite journal initialized", "path", path)
	j.db = db
	return j
}

// Persistent reports whether exchanges reach SQLite.
func (j *Journal) Persistent() bool {
	return j.db != nil
}

// Record stores ex, filling ID and CreatedAt when unset.
func (j *Journal) Record(ex Exchange) Exchange {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	if j.db != nil {
		_, err := j.db.Exec(`INSERT INTO exchanges (id, request_id, message, history_len, reply, error, created_at) VALUES (?,?,?,?,?,?,?);`,
			ex.ID, ex.RequestID, ex.Message, ex.HistoryLen, ex.Reply, ex.Error, ex.CreatedAt)
		if err != nil {
			logger.L.Error("failed to store exchange in sqlite; keeping memory copy", "error", err)
		}
	}

	j.mu.Lock()
	j.exchanges = append(j.exchanges, ex)
	if len(j.exchanges) > memoryLimit {
		j.exchanges = append([]Exchange(nil), j.exchanges[len(j.exchanges)-memoryLimit:]...)
	}
	j.mu.Unlock()
	return ex
}

// Recent returns up to n of the latest exchanges in chronological order.
func (j *Journal) Recent(n int) []Exchange {
	if n <= 0 {
		return nil
	}
	if j.db != nil {
		rows, err := j.db.Query(`SELECT id, request_id, message, history_len, reply, error, created_at FROM exchanges ORDER BY rowid DESC LIMIT ?;`, n)
		if err == nil {
			defer rows.Close()
			var out []Exchange
			for rows.Next() {
				var ex Exchange
				if err := rows.Scan(&ex.ID, &ex.RequestID, &ex.Message, &ex.HistoryLen, &ex.Reply, &ex.Error, &ex.CreatedAt); err == nil {
					out = append(out, ex)
				}
			}
			slices.Reverse(out)
			return out
		}
		logger.L.Warn("sqlite query failed; reading memory copy", "error", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	start := 0
	if len(j.exchanges) > n {
		start = len(j.exchanges) - n
	}
	return append([]Exchange(nil), j.exchanges[start:]...)
}

// Close releases the database handle, if any.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}
