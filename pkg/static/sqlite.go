package static

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteSource serves a content bundle stored in a SQLite database. Each row
// of the assets table holds one file keyed by its slash separated path
// relative to the bundle root.
type SQLiteSource struct {
	db        *sql.DB
	dbPath    string
	logger    *slog.Logger
	closeOnce sync.Once

	getStmt *sql.Stmt
	putStmt *sql.Stmt

	onImport func(name string, size int64)
}

// Asset describes one stored file without its body.
type Asset struct {
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SQLiteSourceConfig configures a SQLiteSource.
type SQLiteSourceConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Logger receives lookup failures. Defaults to slog.Default().
	Logger *slog.Logger

	// OnImport, when set, is called by Import after each stored file with
	// the asset name and its size in bytes.
	OnImport func(name string, size int64)
}

// NewSQLiteSource opens (creating if needed) the bundle at dbPath.
func NewSQLiteSource(dbPath string) (*SQLiteSource, error) {
	return NewSQLiteSourceWithConfig(SQLiteSourceConfig{DBPath: dbPath})
}

// NewSQLiteSourceWithConfig opens the bundle described by cfg.
func NewSQLiteSourceWithConfig(cfg SQLiteSourceConfig) (*SQLiteSource, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "static")
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.DBPath, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteSource{
		db:       db,
		dbPath:   cfg.DBPath,
		logger:   cfg.Logger,
		onImport: cfg.OnImport,
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return s, nil
}

func (s *SQLiteSource) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		path TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		mime TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSource) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`SELECT body, mime FROM assets WHERE path = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO assets (path, body, mime, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			body = excluded.body,
			mime = excluded.mime,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}
	return nil
}

// Open implements router.ContentSource.
func (s *SQLiteSource) Open(name string) (io.ReadCloser, string, bool) {
	body, mimeType, err := s.Get(context.Background(), name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to read bundled content", "name", name, "error", err)
		}
		return nil, "", false
	}
	return io.NopCloser(bytes.NewReader(body)), mimeType, true
}

// Get returns the body and content type stored for name. A row without a
// stored type gets the type of its extension.
func (s *SQLiteSource) Get(ctx context.Context, name string) ([]byte, string, error) {
	rel := cleanName(name)
	if rel == "" {
		return nil, "", ErrNotFound
	}

	var body []byte
	var mimeType string
	err := s.getStmt.QueryRowContext(ctx, rel).Scan(&body, &mimeType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to query asset %q: %w", rel, err)
	}
	if mimeType == "" {
		mimeType = MimeType(rel)
	}
	return body, mimeType, nil
}

// Put stores body under name, replacing any existing row. An empty mimeType
// defers the type to the extension at lookup time.
func (s *SQLiteSource) Put(ctx context.Context, name string, body []byte, mimeType string) error {
	rel := cleanName(name)
	if rel == "" {
		return fmt.Errorf("invalid asset name %q", name)
	}
	if body == nil {
		body = []byte{}
	}
	if _, err := s.putStmt.ExecContext(ctx, rel, body, mimeType, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store asset %q: %w", rel, err)
	}
	return nil
}

// Import stores every regular file below dir under prefix and returns the
// number of files stored. It runs in a single transaction.
func (s *SQLiteSource) Import(ctx context.Context, dir, prefix string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.putStmt)
	count := 0
	now := time.Now().Unix()

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}
		name := cleanName(prefix + "/" + filepath.ToSlash(rel))
		if _, err := stmt.ExecContext(ctx, name, body, "", now); err != nil {
			return fmt.Errorf("failed to store asset %q: %w", name, err)
		}
		count++
		if s.onImport != nil {
			s.onImport(name, int64(len(body)))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Info("imported static content", "path", dir, "db", s.dbPath, "files", count)
	return count, nil
}

// Count returns the number of stored assets.
func (s *SQLiteSource) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return n, nil
}

// List returns every stored asset ordered by path. The mime type is the
// effective one served by Open.
func (s *SQLiteSource) List(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, mime, length(body), updated_at FROM assets ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var a Asset
		var updated int64
		if err := rows.Scan(&a.Path, &a.MimeType, &a.Size, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		if a.MimeType == "" {
			a.MimeType = MimeType(a.Path)
		}
		a.UpdatedAt = time.Unix(updated, 0)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.getStmt != nil {
			s.getStmt.Close()
		}
		if s.putStmt != nil {
			s.putStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}
