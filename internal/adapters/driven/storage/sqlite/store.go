package sqlite

import (
	"context"
	"database/sql/driver"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

const cosineFunc = "vec_cosine"

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions makes vec_cosine available on connections opened
// afterwards. A failed registration is reported on every call.
func registerFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction(cosineFunc, 4, cosineImpl)
	})
	if registerErr != nil {
		return fmt.Errorf("registering %s: %w", cosineFunc, registerErr)
	}
	return nil
}

// cosineImpl evaluates vec_cosine(embedding, magnitude, query, query_magnitude).
func cosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf("%s: expected 4 arguments, got %d", cosineFunc, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, err
	}
	b, err := asEmbedding(args[2])
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("%s: dimension mismatch %d vs %d", cosineFunc, len(a), len(b))
	}
	return vecmath.Cosine(a, b, asFloat(args[1]), asFloat(args[3])), nil
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vecmath.Decode(v)
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T; want BLOB", cosineFunc, arg)
	}
}

func asFloat(arg driver.Value) float32 {
	switch v := arg.(type) {
	case float64:
		return float32(v)
	case int64:
		return float32(v)
	default:
		return 0
	}
}

// VectorStore is a vector index held in an in-memory SQLite database.
type VectorStore struct {
	db         *sqlx.DB
	dimensions int

	mu    sync.RWMutex
	count int
}

// entryRow maps the entries table for inserts.
type entryRow struct {
	ID        string  `db:"id"`
	Text      string  `db:"text"`
	Embedding []byte  `db:"embedding"`
	Magnitude float64 `db:"magnitude"`
}

// hitRow maps a search result row.
type hitRow struct {
	ID    string  `db:"id"`
	Text  string  `db:"text"`
	Score float64 `db:"score"`
}

// NewVectorStore opens an empty in-memory store for vectors of the given size.
func NewVectorStore(ctx context.Context, dimensions int) (*VectorStore, error) {
	if err := registerFunctions(); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &VectorStore{db: db, dimensions: dimensions}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// NewVectorStoreFactory returns a driven.VectorStoreFactory producing
// SQLite stores.
func NewVectorStoreFactory() driven.VectorStoreFactory {
	return func(ctx context.Context, dimensions int) (driven.VectorStore, error) {
		return NewVectorStore(ctx, dimensions)
	}
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(ctx context.Context, fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.GetContext(ctx, &currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_vectors.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Add inserts entries in one transaction, preserving their order.
func (s *VectorStore) Add(ctx context.Context, entries []driven.VectorEntry) error {
	rows := make([]entryRow, len(entries))
	for i, e := range entries {
		if len(e.Vector) != s.dimensions {
			return fmt.Errorf("entry %d: vector has %d dimensions, want %d", i, len(e.Vector), s.dimensions)
		}
		rows[i] = entryRow{
			ID:        e.ID,
			Text:      e.Text,
			Embedding: vecmath.Encode(e.Vector),
			Magnitude: float64(vecmath.Magnitude(e.Vector)),
		}
	}
	if len(rows) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareNamedContext(ctx,
		`INSERT INTO entries (id, text, embedding, magnitude) VALUES (:id, :text, :embedding, :magnitude)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("insert entry %s: %w", row.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.count += len(rows)
	return nil
}

// Search returns the k entries most similar to query.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, want %d", len(query), s.dimensions)
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []hitRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, text, `+cosineFunc+`(embedding, magnitude, ?, ?) AS score
		FROM entries
		ORDER BY score DESC, seq ASC
		LIMIT ?`,
		vecmath.Encode(query), float64(vecmath.Magnitude(query)), k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]driven.VectorHit, len(rows))
	for i, row := range rows {
		hits[i] = driven.VectorHit{ID: row.ID, Text: row.Text, Similarity: row.Score}
	}
	return hits, nil
}

// Len returns the number of stored entries.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Close closes the database, discarding the index.
func (s *VectorStore) Close() error {
	return s.db.Close()
}
