/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

const scoresSchema = `
CREATE TABLE IF NOT EXISTS scores (
	mode     TEXT    NOT NULL,
	nickname TEXT    NOT NULL,
	score    INTEGER NOT NULL,
	PRIMARY KEY (mode, nickname)
)`

// SQLiteScoreStore keeps the leaderboard in a SQLite database.
type SQLiteScoreStore struct {
	db  *sql.DB
	cfg *Config

	mu sync.Mutex
}

func openSQLiteScoreStore(ctx context.Context, cfg *Config, dsn string) (*SQLiteScoreStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open score database: %w", err)
	}

	// :memory: databases exist per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, scoresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create scores table: %w", err)
	}

	return &SQLiteScoreStore{db: db, cfg: cfg}, nil
}

func (s *SQLiteScoreStore) Load(ctx context.Context) (ScoreBoard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, nickname, score
		FROM scores
		ORDER BY score DESC, rowid ASC`)
	if err != nil {
		return emptyScoreBoard(), fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	board := emptyScoreBoard()

	for rows.Next() {
		var (
			mode  string
			entry ScoreEntry
		)
		if err := rows.Scan(&mode, &entry.Nickname, &entry.Score); err != nil {
			return emptyScoreBoard(), fmt.Errorf("scan score: %w", err)
		}

		switch Mode(mode) {
		case ModeSurvival:
			board.Survival = append(board.Survival, entry)
		case ModeTimeAttack:
			board.TimeAttack = append(board.TimeAttack, entry)
		}
	}

	if err := rows.Err(); err != nil {
		return emptyScoreBoard(), fmt.Errorf("load scores: %w", err)
	}

	return board, nil
}

func (s *SQLiteScoreStore) Submit(ctx context.Context, mode Mode, entry ScoreEntry) (ScoreBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scores (mode, nickname, score) VALUES (?, ?, ?)
		ON CONFLICT (mode, nickname) DO UPDATE SET score = max(score, excluded.score)`,
		string(mode), entry.Nickname, entry.Score)
	if err != nil {
		return ScoreBoard{}, fmt.Errorf("save score: %w", err)
	}

	logf(s.cfg, "SCORE: %q scored %d in %s", entry.Nickname, entry.Score, mode)

	return s.Load(ctx)
}

func (s *SQLiteScoreStore) Close() error {
	return s.db.Close()
}
