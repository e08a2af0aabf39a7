package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/harborlight-labs/corpusqa/internal/adapters/driven/index/sqlite/migrations"
	"github.com/harborlight-labs/corpusqa/internal/core/domain"
	"github.com/harborlight-labs/corpusqa/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const dimensionsKey = "dimensions"

// Index is a SQLite-backed vector index. The established vector
// dimension is persisted alongside the corpus, so reopening a data
// directory with a different embedding model fails fast instead of
// mixing dimensions.
type Index struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewIndex opens (or creates) the index at dataDir, established with
// the given vector dimension. If dataDir is empty, defaults to
// ~/.corpusqa/data/index.db.
func NewIndex(dataDir string, dimensions int) (*Index, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpusqa", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL mode for better concurrency between ingestion and queries.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ix := &Index{
		db:         db,
		path:       dbPath,
		dimensions: dimensions,
	}

	if err := ix.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := ix.establishDimensions(dimensions); err != nil {
		db.Close()
		return nil, err
	}

	return ix, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file path.
func (ix *Index) Path() string {
	return ix.path
}

// Dimensions returns the established vector dimension.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Upsert inserts or replaces passages, keyed by passage ID.
// The whole batch is written in one transaction; a dimension mismatch
// anywhere in the batch indexes nothing.
func (ix *Index) Upsert(ctx context.Context, batch []domain.EmbeddedPassage) error {
	for _, p := range batch {
		if p.ID == "" {
			return fmt.Errorf("%w: passage ID is empty", domain.ErrInvalidInput)
		}
		if len(p.Vector) != ix.dimensions {
			return fmt.Errorf("%w: passage %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, p.ID, len(p.Vector), ix.dimensions)
		}
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, source_id, content, sequence, start_char, end_char, word_count, section, vector, inserted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			content = excluded.content,
			sequence = excluded.sequence,
			start_char = excluded.start_char,
			end_char = excluded.end_char,
			word_count = excluded.word_count,
			section = excluded.section,
			vector = excluded.vector
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, p := range batch {
		if _, err := stmt.ExecContext(ctx, p.ID, p.SourceID, p.Content, p.Sequence,
			p.StartChar, p.EndChar, p.WordCount, p.Section,
			float32SliceToBytes(p.Vector), now); err != nil {
			return fmt.Errorf("saving passage %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ScanAll returns one page of the corpus in first-insertion order.
func (ix *Index) ScanAll(ctx context.Context, offset, limit int) ([]domain.EmbeddedPassage, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = driven.DefaultScanPageSize
	}

	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, source_id, content, sequence, start_char, end_char, word_count, section, vector
		FROM passages ORDER BY rowid LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// FilterBySource returns the passages ingested under sourceID.
func (ix *Index) FilterBySource(ctx context.Context, sourceID string) ([]domain.EmbeddedPassage, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, source_id, content, sequence, start_char, end_char, word_count, section, vector
		FROM passages WHERE source_id = ? ORDER BY rowid
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("querying passages by source: %w", err)
	}
	defer rows.Close()

	return scanPassages(rows)
}

// ClearAll empties the corpus, keeping the established dimension.
func (ix *Index) ClearAll(ctx context.Context) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM passages`); err != nil {
		return fmt.Errorf("clearing passages: %w", err)
	}
	return nil
}

// Stats reports the passage count and distinct source identifiers.
func (ix *Index) Stats(ctx context.Context) (*domain.CorpusStats, error) {
	var total int
	row := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passages`)
	if err := row.Scan(&total); err != nil {
		return nil, fmt.Errorf("counting passages: %w", err)
	}

	rows, err := ix.db.QueryContext(ctx, `SELECT DISTINCT source_id FROM passages`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}
	sort.Strings(sources)

	return &domain.CorpusStats{
		TotalPassages: total,
		Sources:       sources,
	}, nil
}

// establishDimensions persists the index dimension on first open and
// verifies it on subsequent opens.
func (ix *Index) establishDimensions(dimensions int) error {
	var stored string
	row := ix.db.QueryRow(`SELECT value FROM index_meta WHERE key = ?`, dimensionsKey)
	err := row.Scan(&stored)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err := ix.db.Exec(`INSERT INTO index_meta (key, value) VALUES (?, ?)`,
			dimensionsKey, strconv.Itoa(dimensions))
		if err != nil {
			return fmt.Errorf("storing dimensions: %w", err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("reading dimensions: %w", err)
	}

	got, err := strconv.Atoi(stored)
	if err != nil {
		return fmt.Errorf("parsing stored dimensions %q: %w", stored, err)
	}
	if got != dimensions {
		return fmt.Errorf("%w: index was established with %d dimensions, configured with %d",
			domain.ErrDimensionMismatch, got, dimensions)
	}
	return nil
}

// migrate runs all pending migrations.
func (ix *Index) migrate(fsys embed.FS) error {
	_, err := ix.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := ix.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
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
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := ix.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := ix.db.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// scanPassages drains rows into embedded passages.
func scanPassages(rows *sql.Rows) ([]domain.EmbeddedPassage, error) {
	var passages []domain.EmbeddedPassage
	for rows.Next() {
		var p domain.EmbeddedPassage
		var vectorBlob []byte
		if err := rows.Scan(&p.ID, &p.SourceID, &p.Content, &p.Sequence,
			&p.StartChar, &p.EndChar, &p.WordCount, &p.Section, &vectorBlob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Vector = bytesToFloat32Slice(vectorBlob)
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return passages, nil
}

// float32SliceToBytes converts a vector to a little-endian byte blob.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte blob back to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
