// Package search mirrors the item index into sqlite for free-text queries.
package search

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-tasks/pkg/models"
)

// Index is a sqlite mirror of the scanner's items. It uses FTS5 when the
// driver was built with it and falls back to LIKE queries otherwise.
type Index struct {
	db     *sql.DB
	useFTS bool
}

// Result is one matching item.
type Result struct {
	Path     string          `json:"path"`
	Line     int             `json:"line"`
	Category models.Category `json:"category"`
	Text     string          `json:"text"`
	Tags     []string        `json:"tags"`
	Snippet  string          `json:"snippet,omitempty"`
}

// Options narrows a search.
type Options struct {
	Category models.Category
	Limit    int
}

// NewIndex opens (or creates) the index at dbPath. ":memory:" keeps it in
// process.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init search index: %w", err)
	}
	return idx, nil
}

// init creates the database schema
func (idx *Index) init() error {
	idx.useFTS = idx.checkFTS5Support()

	schema := `
	CREATE TABLE IF NOT EXISTS items (
		path TEXT NOT NULL,
		line INTEGER NOT NULL,
		category TEXT NOT NULL,
		text TEXT NOT NULL,
		tags TEXT NOT NULL,
		is_header BOOLEAN NOT NULL,
		PRIMARY KEY (path, line)
	);

	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category);
	`
	if _, err := idx.db.Exec(schema); err != nil {
		return err
	}

	if idx.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS items_fts USING fts5(
			path UNINDEXED,
			line UNINDEXED,
			text,
			tags,
			tokenize = 'porter unicode61'
		);
		`
		if _, err := idx.db.Exec(ftsSchema); err != nil {
			idx.useFTS = false
		}
	}
	return nil
}

// checkFTS5Support checks if FTS5 module is available
func (idx *Index) checkFTS5Support() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// UsesFTS reports whether full-text search is available.
func (idx *Index) UsesFTS() bool {
	return idx.useFTS
}

// Rebuild replaces the whole mirror with items.
func (idx *Index) Rebuild(items []models.Item) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM items_fts"); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM items"); err != nil {
		return err
	}
	if err := idx.insert(tx, items); err != nil {
		return err
	}
	return tx.Commit()
}

// IndexDocument replaces the mirrored items of one document.
func (idx *Index) IndexDocument(path string, items []models.Item) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := idx.remove(tx, path); err != nil {
		return err
	}
	if err := idx.insert(tx, items); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveDocument drops the mirrored items of one document.
func (idx *Index) RemoveDocument(path string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := idx.remove(tx, path); err != nil {
		return err
	}
	return tx.Commit()
}

func (idx *Index) remove(tx *sql.Tx, path string) error {
	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM items_fts WHERE path = ?", path); err != nil {
			return err
		}
	}
	_, err := tx.Exec("DELETE FROM items WHERE path = ?", path)
	return err
}

func (idx *Index) insert(tx *sql.Tx, items []models.Item) error {
	meta, err := tx.Prepare(`
		INSERT INTO items (path, line, category, text, tags, is_header)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer meta.Close()

	var fts *sql.Stmt
	if idx.useFTS {
		fts, err = tx.Prepare("INSERT INTO items_fts (path, line, text, tags) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer fts.Close()
	}

	for _, it := range items {
		tagText := strings.Join(it.Tags, " ")
		if _, err := meta.Exec(it.DocumentPath, it.LineNumber, string(it.Category), it.RawText, tagText, it.IsHeader); err != nil {
			return fmt.Errorf("insert %s:%d: %w", it.DocumentPath, it.LineNumber, err)
		}
		if fts != nil {
			if _, err := fts.Exec(it.DocumentPath, it.LineNumber, it.RawText, tagText); err != nil {
				return fmt.Errorf("insert %s:%d: %w", it.DocumentPath, it.LineNumber, err)
			}
		}
	}
	return nil
}

// Count returns the number of mirrored items.
func (idx *Index) Count() (int, error) {
	var n int
	err := idx.db.QueryRow("SELECT COUNT(*) FROM items").Scan(&n)
	return n, err
}

// Search finds items whose text or tags contain every word of query.
func (idx *Index) Search(query string, opts *Options) ([]Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}

	if idx.useFTS {
		return idx.searchWithFTS(words, opts.Category, limit)
	}
	return idx.searchWithoutFTS(words, opts.Category, limit)
}

// ftsQuery quotes every word so user input is never parsed as FTS syntax.
func ftsQuery(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func (idx *Index) searchWithFTS(words []string, category models.Category, limit int) ([]Result, error) {
	conditions := []string{"items_fts MATCH ?"}
	args := []any{ftsQuery(words)}
	if category != "" {
		conditions = append(conditions, "m.category = ?")
		args = append(args, string(category))
	}
	args = append(args, limit)

	searchQuery := fmt.Sprintf(`
		SELECT
			m.path, m.line, m.category, m.text, m.tags,
			snippet(items_fts, 2, '<match>', '</match>', '...', 16) AS snippet
		FROM items_fts f
		JOIN items m ON f.path = m.path AND CAST(f.line AS INTEGER) = m.line
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	rows, err := idx.db.Query(searchQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var category, tagText string
		if err := rows.Scan(&r.Path, &r.Line, &category, &r.Text, &tagText, &r.Snippet); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		r.Tags = strings.Fields(tagText)
		results = append(results, r)
	}
	return results, rows.Err()
}

func (idx *Index) searchWithoutFTS(words []string, category models.Category, limit int) ([]Result, error) {
	var conditions []string
	var args []any
	for _, w := range words {
		pattern := "%" + w + "%"
		conditions = append(conditions, "(text LIKE ? OR tags LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(category))
	}
	args = append(args, limit)

	searchQuery := fmt.Sprintf(`
		SELECT path, line, category, text, tags
		FROM items
		WHERE %s
		ORDER BY path, line
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	rows, err := idx.db.Query(searchQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var category, tagText string
		if err := rows.Scan(&r.Path, &r.Line, &category, &r.Text, &tagText); err != nil {
			return nil, err
		}
		r.Category = models.Category(category)
		r.Tags = strings.Fields(tagText)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the index
func (idx *Index) Close() error {
	return idx.db.Close()
}
