/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	_ "github.com/mattn/go-sqlite3"
)

const ledgerQueueSize = 256

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room_code   TEXT    NOT NULL,
	player      TEXT    NOT NULL,
	score       INTEGER NOT NULL,
	total       INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS results_room_code ON results (room_code);
`

type FinishedResult struct {
	RoomCode   string    `json:"roomCode"`
	Player     string    `json:"player"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Ledger archives finished results in sqlite. Writes happen on their own
// goroutine so recording never holds up the coordinator.
type Ledger struct {
	cfg   *Config
	db    *sql.DB
	queue chan FinishedResult
	done  chan struct{}
}

func openLedger(cfg *Config, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// One connection keeps the background writer and HTTP readers from
	// tripping over sqlite's file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(ledgerSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing results schema: %w", err)
	}

	return &Ledger{
		cfg:   cfg,
		db:    db,
		queue: make(chan FinishedResult, ledgerQueueSize),
		done:  make(chan struct{}),
	}, nil
}

// Record queues r for writing, dropping it if the queue is full.
func (l *Ledger) Record(r FinishedResult) {
	select {
	case l.queue <- r:
	default:
		logf(l.cfg, "ERROR: Results queue full, dropped %q in %s", r.Player, r.RoomCode)
	}
}

// run writes queued results until ctx is cancelled, then flushes what is left.
func (l *Ledger) run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case r := <-l.queue:
			l.write(r)
		case <-ctx.Done():
			for {
				select {
				case r := <-l.queue:
					l.write(r)
				default:
					return
				}
			}
		}
	}
}

func (l *Ledger) write(r FinishedResult) {
	_, err := l.db.Exec(
		`INSERT INTO results (room_code, player, score, total, finished_at) VALUES (?, ?, ?, ?, ?)`,
		r.RoomCode, r.Player, r.Score, r.Total, r.FinishedAt.UnixMilli(),
	)
	if err != nil {
		logf(l.cfg, "ERROR: Writing result for %q in %s: %v", r.Player, r.RoomCode, err)
	}
}

// Results returns archived results for a room, newest first.
func (l *Ledger) Results(ctx context.Context, code string) ([]FinishedResult, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT room_code, player, score, total, finished_at FROM results WHERE room_code = ? ORDER BY finished_at DESC, id DESC`,
		code,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []FinishedResult{}
	for rows.Next() {
		var (
			r        FinishedResult
			finished int64
		)
		if err := rows.Scan(&r.RoomCode, &r.Player, &r.Score, &r.Total, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(finished)
		results = append(results, r)
	}

	return results, rows.Err()
}

// Close waits for run to flush and closes the database.
func (l *Ledger) Close() error {
	<-l.done
	return l.db.Close()
}

func serveResults(cfg *Config, l *Ledger, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		code := normalizeCode(p.ByName("code"))

		results, err := l.Results(r.Context(), code)
		if err != nil {
			errs <- err

			http.Error(w, "could not load results", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(results); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: %d results for %s to %s in %s",
			len(results),
			code,
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
