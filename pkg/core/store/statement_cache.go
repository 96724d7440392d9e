package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"finstat/pkg/core/statement"
)

// StatementCache keeps parsed statements keyed by document content hash so
// an identical upload is not extracted twice. With a database it reads and
// writes the parsed_statements table; otherwise it falls back to JSON files
// in a directory.
type StatementCache struct {
	db      *sql.DB
	fileDir string
}

// NewStatementCache creates a cache. With a nil db and an empty dir the
// cache writes under .cache/statements.
func NewStatementCache(db *sql.DB, dir string) (*StatementCache, error) {
	if db == nil && dir == "" {
		dir = filepath.Join(".cache", "statements")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	return &StatementCache{db: db, fileDir: dir}, nil
}

// cacheEntry is the file representation of a cached statement.
type cacheEntry struct {
	Key       string                     `json:"key"`
	Statement *statement.ParsedStatement `json:"statement"`
	CachedAt  time.Time                  `json:"cached_at"`
}

var keyPattern = regexp.MustCompile(`^[0-9a-f]{16,128}$`)

// Get returns the cached statement, or nil on a miss.
func (c *StatementCache) Get(ctx context.Context, key string) (*statement.ParsedStatement, error) {
	if !keyPattern.MatchString(key) {
		return nil, fmt.Errorf("invalid cache key %q", key)
	}

	if c.db != nil {
		var data []byte
		err := c.db.QueryRowContext(ctx, `SELECT statement_json FROM parsed_statements WHERE content_hash = $1`, key).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read statement cache: %w", err)
		}
		var stmt statement.ParsedStatement
		if err := json.Unmarshal(data, &stmt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached statement: %w", err)
		}
		return &stmt, nil
	}

	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read statement cache: %w", err)
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached statement: %w", err)
	}
	return entry.Statement, nil
}

// Put stores stmt under key, replacing any previous entry.
func (c *StatementCache) Put(ctx context.Context, key string, stmt *statement.ParsedStatement) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid cache key %q", key)
	}

	if c.db != nil {
		data, err := json.Marshal(stmt)
		if err != nil {
			return fmt.Errorf("failed to marshal statement: %w", err)
		}
		_, err = c.db.ExecContext(ctx, `
			INSERT INTO parsed_statements (content_hash, company_name, period_end, statement_json)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (content_hash)
			DO UPDATE SET statement_json = EXCLUDED.statement_json`,
			key, stmt.Company.Name, nullTime(stmt.Period.End), data)
		if err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(cacheEntry{Key: key, Statement: stmt, CachedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal statement: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to save to file cache: %w", err)
	}
	return nil
}

func (c *StatementCache) path(key string) string {
	return filepath.Join(c.fileDir, key+".json")
}
