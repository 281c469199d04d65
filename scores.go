/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// leaderboardSize is how many entries the leaderboard view shows per mode.
const leaderboardSize = 20

type ScoreEntry struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// ScoreBoard is the persisted leaderboard, one list per mode, each sorted
// by descending score.
type ScoreBoard struct {
	Survival   []ScoreEntry `json:"survival"`
	TimeAttack []ScoreEntry `json:"time_attack"`
}

func emptyScoreBoard() ScoreBoard {
	return ScoreBoard{Survival: []ScoreEntry{}, TimeAttack: []ScoreEntry{}}
}

func (b ScoreBoard) Entries(mode Mode) []ScoreEntry {
	if mode == ModeTimeAttack {
		return b.TimeAttack
	}
	return b.Survival
}

// Top returns at most n entries for mode.
func (b ScoreBoard) Top(mode Mode, n int) []ScoreEntry {
	entries := b.Entries(mode)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Upsert records entry under mode. An existing nickname keeps the higher of
// its two scores. The receiver is not modified.
func (b ScoreBoard) Upsert(mode Mode, entry ScoreEntry) ScoreBoard {
	entries := append([]ScoreEntry(nil), b.Entries(mode)...)

	found := false
	for i := range entries {
		if entries[i].Nickname == entry.Nickname {
			entries[i].Score = max(entries[i].Score, entry.Score)
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}

	sortEntries(entries)

	out := b.normalized()
	if mode == ModeTimeAttack {
		out.TimeAttack = entries
	} else {
		out.Survival = entries
	}
	return out
}

// sortEntries orders entries by descending score. Ties keep their order.
func sortEntries(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

func (b ScoreBoard) normalized() ScoreBoard {
	if b.Survival == nil {
		b.Survival = []ScoreEntry{}
	}
	if b.TimeAttack == nil {
		b.TimeAttack = []ScoreEntry{}
	}
	return b
}

// ScoreStore persists the leaderboard. Implementations serialize Submit so
// concurrent sessions cannot lose each other's updates.
type ScoreStore interface {
	Load(ctx context.Context) (ScoreBoard, error)
	Submit(ctx context.Context, mode Mode, entry ScoreEntry) (ScoreBoard, error)
	Close() error
}

// decodeScoreBoard accepts the current document shape and the older bare
// list, which only ever held survival scores. Hand-edited lists come back
// sorted.
func decodeScoreBoard(data []byte) (ScoreBoard, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return ScoreBoard{}, errors.New("empty score document")
	}

	if data[0] == '[' {
		var legacy []ScoreEntry
		if err := json.Unmarshal(data, &legacy); err != nil {
			return ScoreBoard{}, err
		}
		sortEntries(legacy)
		return ScoreBoard{Survival: legacy}.normalized(), nil
	}

	var board ScoreBoard
	if err := json.Unmarshal(data, &board); err != nil {
		return ScoreBoard{}, err
	}
	sortEntries(board.Survival)
	sortEntries(board.TimeAttack)
	return board.normalized(), nil
}

// FileScoreStore keeps the leaderboard in a single JSON document.
type FileScoreStore struct {
	path string
	cfg  *Config

	mu sync.Mutex
}

func newFileScoreStore(cfg *Config, path string) *FileScoreStore {
	return &FileScoreStore{path: path, cfg: cfg}
}

func (s *FileScoreStore) Load(ctx context.Context) (ScoreBoard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(), nil
}

// load never fails: a missing or damaged file reads as an empty board.
func (s *FileScoreStore) load() ScoreBoard {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyScoreBoard()
	}
	if err != nil {
		logf(s.cfg, "SCORE: Reading %s failed, starting empty: %v", s.path, err)
		return emptyScoreBoard()
	}

	board, err := decodeScoreBoard(data)
	if err != nil {
		logf(s.cfg, "SCORE: Parsing %s failed, starting empty: %v", s.path, err)
		return emptyScoreBoard()
	}

	return board
}

func (s *FileScoreStore) Submit(ctx context.Context, mode Mode, entry ScoreEntry) (ScoreBoard, error) {
	if err := ctx.Err(); err != nil {
		return ScoreBoard{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	board := s.load().Upsert(mode, entry)

	if err := s.save(board); err != nil {
		return ScoreBoard{}, err
	}

	logf(s.cfg, "SCORE: %q scored %d in %s", entry.Nickname, entry.Score, mode)

	return board, nil
}

// save writes board to a temporary file next to the target and renames it
// into place, so readers never observe a partial document.
func (s *FileScoreStore) save(board ScoreBoard) error {
	data, err := json.MarshalIndent(board.normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("save scores: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("save scores: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("save scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}

	return nil
}

func (s *FileScoreStore) Close() error {
	return nil
}

func openScoreStore(ctx context.Context, cfg *Config) (ScoreStore, error) {
	switch cfg.scoreStore {
	case "sqlite":
		return openSQLiteScoreStore(ctx, cfg, cfg.scoreDB)
	default:
		return newFileScoreStore(cfg, cfg.scoreFile), nil
	}
}
