/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fantranslator/internal/domain"
	applog "fantranslator/internal/log"
	"fantranslator/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema of the search index.
	schemaVersion = 1

	defaultSearchLimit = 50
)

// IndexPath returns the full path to the project's search index file.
func IndexPath(projectRoot string) string {
	return filepath.Join(projectRoot, IndexFileName)
}

// Index is the per-project full-text index over translation pairs.
// It is derived from the page carriers and can be deleted at any time.
type Index struct {
	db   *sql.DB
	path string
}

// OpenIndex creates or opens <root>/index.sqlite, enables WAL mode and
// ensures the version table and pair schema exist.
func OpenIndex(projectRoot string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(
		slog.String("root", projectRoot),
	)
	if strings.TrimSpace(projectRoot) == "" {
		return nil, errors.New("project root is required")
	}
	if err := os.MkdirAll(projectRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create project root: %w", err)
	}
	path := IndexPath(projectRoot)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePairSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("index ready", slog.String("path", path))
	return &Index{db: db, path: path}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error { return ix.db.Close() }

// Path is the database file location.
func (ix *Index) Path() string { return ix.path }

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`,
			schemaVersion, version.String(), now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, version.String(), now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensurePairSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS pairs (
			id        INTEGER PRIMARY KEY,
			page_uid  TEXT    NOT NULL,
			pos       INTEGER NOT NULL,
			uid       TEXT    NOT NULL,
			orig      TEXT    NOT NULL,
			tran      TEXT    NOT NULL,
			font      TEXT    NOT NULL,
			size      INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_page ON pairs(page_uid, pos);`,
		// External-content FTS over both texts of a pair.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_pairs USING fts5(
			orig, tran,
			content='pairs', content_rowid='id',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS pairs_ai AFTER INSERT ON pairs BEGIN
			INSERT INTO fts_pairs(rowid, orig, tran) VALUES (new.id, new.orig, new.tran);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS pairs_ad AFTER DELETE ON pairs BEGIN
			INSERT INTO fts_pairs(fts_pairs, rowid, orig, tran) VALUES ('delete', old.id, old.orig, old.tran);
		END;`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// IndexPagePairs replaces every indexed pair of pageUID with pairs.
func (ix *Index) IndexPagePairs(ctx context.Context, pageUID string, pairs []domain.TranslationPair) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := replacePage(ctx, tx, pageUID, pairs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit page %s: %w", pageUID, err)
	}
	return nil
}

func replacePage(ctx context.Context, tx *sql.Tx, pageUID string, pairs []domain.TranslationPair) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM pairs WHERE page_uid=?`, pageUID); err != nil {
		return fmt.Errorf("clear page %s: %w", pageUID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pairs (page_uid, pos, uid, orig, tran, font, size) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, p := range pairs {
		if _, err := stmt.ExecContext(ctx, pageUID, i, p.UID, p.Source, p.Translated, p.Font, p.Size); err != nil {
			return fmt.Errorf("insert pair %s: %w", p.UID, err)
		}
	}
	return nil
}

// PairLoader returns the pairs stored on one page.
type PairLoader func(ctx context.Context, pg domain.Page) ([]domain.TranslationPair, error)

// Rebuild clears the index and re-reads every page of p in one transaction.
// Pages whose pairs cannot be loaded are indexed as empty.
func (ix *Index) Rebuild(ctx context.Context, p *Project, load PairLoader) (int, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_rebuild")
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pairs`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear index: %w", err)
	}
	total := 0
	for _, pg := range p.Pages {
		pairs, err := load(ctx, pg)
		if err != nil {
			l.Warn("page skipped", slog.String("page", pg.UID), slog.Any("err", err))
			continue
		}
		if err := replacePage(ctx, tx, pg.UID, pairs); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		total += len(pairs)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit rebuild: %w", err)
	}
	l.Info("index rebuilt", slog.Int("pages", len(p.Pages)), slog.Int("pairs", total))
	return total, nil
}

// SearchPairs runs a prefix full-text query over source and translated text.
// Each whitespace separated term must match. limit <= 0 uses a default.
func (ix *Index) SearchPairs(ctx context.Context, query string, limit int) ([]domain.PairHit, error) {
	match := ftsQuery(query)
	if match == "" {
		return []domain.PairHit{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := ix.db.QueryContext(ctx, `SELECT p.page_uid, p.uid, p.orig, p.tran, p.font, p.size
		FROM fts_pairs JOIN pairs p ON fts_pairs.rowid = p.id
		WHERE fts_pairs MATCH ?
		ORDER BY bm25(fts_pairs), p.page_uid, p.pos
		LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("search pairs: %w", err)
	}
	defer rows.Close()
	out := []domain.PairHit{}
	for rows.Next() {
		var h domain.PairHit
		if err := rows.Scan(&h.PageUID, &h.Pair.UID, &h.Pair.Source, &h.Pair.Translated, &h.Pair.Font, &h.Pair.Size); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Count is the number of indexed pairs.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pairs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pairs: %w", err)
	}
	return n, nil
}

// ftsQuery turns free text into an FTS5 expression of quoted prefix terms.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		parts = append(parts, `"`+strings.ReplaceAll(t, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " ")
}
