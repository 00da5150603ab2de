package library

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrBookNotFound is returned by callers that need to surface a missing id.
	// The Database itself reports absence through its boolean results.
	ErrBookNotFound = errors.New("book not found")
	// ErrSchemaMismatch means the file was created with another schema variant.
	ErrSchemaMismatch = errors.New("schema variant mismatch")
)

// Database provides high-level helpers around a SQLite connection.
type Database struct {
	db     *sql.DB
	schema Schema
	def    *schemaDef

	addBookStmt    *sql.Stmt
	updateBookStmt *sql.Stmt
	deleteBookStmt *sql.Stmt
	findBookStmt   *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, makes sure the
// books table exists in the given schema variant and prepares common statements.
func NewDatabase(dbPath string, schema Schema) (*Database, error) {
	def, ok := schemas[schema]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", schema)
	}

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection for the lifetime of the handle.
	db.SetMaxOpenConns(1)

	database := &Database{db: db, schema: schema, def: def}
	if err := database.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("Database initialized at %s (schema %s)", dbPath, schema)
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.addBookStmt, d.updateBookStmt, d.deleteBookStmt, d.findBookStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// Schema reports the variant this database was opened with.
func (d *Database) Schema() Schema { return d.schema }

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// initialize is safe to run on every start. The variant is recorded on first
// creation and checked afterwards; the table is never migrated.
func (d *Database) initialize() error {
	if _, err := d.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	var current string
	err := d.db.QueryRow(`SELECT value FROM meta WHERE key='schema_variant';`).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		current = ""
		// A books table written without a meta row keeps whatever layout it has.
		existing, err := d.existingVariant()
		if err != nil {
			return err
		}
		if existing != "" && existing != d.schema {
			return fmt.Errorf("%w: existing books table is %q, requested %q", ErrSchemaMismatch, existing, d.schema)
		}
	case err != nil:
		return fmt.Errorf("read schema variant: %w", err)
	case Schema(current) != d.schema:
		return fmt.Errorf("%w: file uses %q, requested %q", ErrSchemaMismatch, current, d.schema)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(d.def.createTable); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	if current == "" {
		if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_variant',?)`, string(d.schema)); err != nil {
			return fmt.Errorf("record schema variant: %w", err)
		}
	}
	return tx.Commit()
}

// existingVariant inspects an already present books table. It returns "" when
// there is no table, and ErrSchemaMismatch when the columns match neither layout.
func (d *Database) existingVariant() (Schema, error) {
	rows, err := d.db.Query(`PRAGMA table_info(books);`)
	if err != nil {
		return "", fmt.Errorf("inspect books table: %w", err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return "", fmt.Errorf("inspect books table: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("inspect books table: %w", err)
	}

	switch {
	case len(cols) == 0:
		return "", nil
	case cols["isbn"] && cols["status"]:
		return SchemaCatalog, nil
	case cols["year"] && cols["read"]:
		return SchemaReading, nil
	}
	return "", fmt.Errorf("%w: books table has an unrecognised layout", ErrSchemaMismatch)
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(d.def.insert); err != nil {
		return err
	}
	if d.updateBookStmt, err = d.db.Prepare(d.def.update); err != nil {
		return err
	}
	if d.deleteBookStmt, err = d.db.Prepare(`DELETE FROM books WHERE id=?`); err != nil {
		return err
	}
	if d.findBookStmt, err = d.db.Prepare(`SELECT ` + d.def.columns + ` FROM books WHERE id=?`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

// AddBook inserts b as a new row and returns the id the store assigned.
// b.ID is ignored. No duplicate detection is done.
func (d *Database) AddBook(b *Book) (int64, error) {
	res, err := d.addBookStmt.Exec(d.def.insertArgs(b)...)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", err)
	}
	return res.LastInsertId()
}

// FindBook returns the book with the given id. ok is false when no row has it.
func (d *Database) FindBook(id int64) (book *Book, ok bool, err error) {
	var b Book
	err = d.def.scan(d.findBookStmt.QueryRow(id), &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get book %d: %w", id, err)
	}
	return &b, true, nil
}

// GetAllBooks returns every row ordered by title.
func (d *Database) GetAllBooks() ([]*Book, error) {
	return d.queryBooks(`SELECT ` + d.def.columns + ` FROM books ORDER BY title, id`)
}

// SearchBooks returns rows whose title, author or schema-specific third column
// (isbn or genre) contains q, ordered by title. LIKE wildcards in q are not
// escaped, and an empty q matches every row.
func (d *Database) SearchBooks(q string) ([]*Book, error) {
	pattern := "%" + q + "%"
	col := d.def.searchColumn
	query := `SELECT ` + d.def.columns + ` FROM books
        WHERE title LIKE ? OR author LIKE ? OR ` + col + ` LIKE ?
        ORDER BY title, id`
	return d.queryBooks(query, pattern, pattern, pattern)
}

// UpdateBook overwrites every mutable field of the row with b.ID in a single
// statement. A missing id is not an error; updated reports whether a row matched.
func (d *Database) UpdateBook(b *Book) (updated bool, err error) {
	res, err := d.updateBookStmt.Exec(d.def.updateArgs(b)...)
	if err != nil {
		return false, fmt.Errorf("update book %d: %w", b.ID, err)
	}
	return affected(res)
}

// DeleteBook removes the row with id. A missing id is not an error.
func (d *Database) DeleteBook(id int64) (deleted bool, err error) {
	res, err := d.deleteBookStmt.Exec(id)
	if err != nil {
		return false, fmt.Errorf("delete book %d: %w", id, err)
	}
	return affected(res)
}

// Statistics counts all books and the ones marked as read. In the catalog
// schema a book counts as read once its status is Completed.
func (d *Database) Statistics() (Stats, error) {
	var s Stats
	if err := d.db.QueryRow(d.def.readCount).Scan(&s.Total, &s.Read); err != nil {
		return Stats{}, fmt.Errorf("count books: %w", err)
	}
	if s.Total > 0 {
		s.Percent = float64(s.Read) / float64(s.Total) * 100
	}
	return s, nil
}

func (d *Database) queryBooks(query string, args ...any) ([]*Book, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		var b Book
		if err := d.def.scan(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
