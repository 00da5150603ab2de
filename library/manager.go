package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LibraryManager is a thin façade over the Database, keeping CLI code simple.
// It owns the caller-side validation the Database deliberately skips.
type LibraryManager struct {
	db  *Database
	now func() time.Time
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath.
func NewLibraryManager(dbPath string, schema Schema) (*LibraryManager, error) {
	db, err := NewDatabase(dbPath, schema)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

func (lm *LibraryManager) Schema() Schema { return lm.db.Schema() }

// ------------------ Book helpers ------------------

// AddBook validates b, fills defaults (status To Read, added date now) and
// stores it. The new id is also written back to b.
func (lm *LibraryManager) AddBook(b *Book) (int64, error) {
	normalize(b)
	if b.Status == "" {
		b.Status = StatusToRead
	}
	if err := ValidateBook(b); err != nil {
		return 0, err
	}
	if b.AddedAt.IsZero() {
		b.AddedAt = lm.now().Truncate(time.Second)
	}
	id, err := lm.db.AddBook(b)
	if err != nil {
		return 0, err
	}
	b.ID = id
	return id, nil
}

// UpdateBook validates b and replaces the stored row with id b.ID. It reports
// false, without error, when the id does not exist.
func (lm *LibraryManager) UpdateBook(b *Book) (bool, error) {
	normalize(b)
	if err := ValidateBook(b); err != nil {
		return false, err
	}
	return lm.db.UpdateBook(b)
}

func (lm *LibraryManager) DeleteBook(id int64) (bool, error) { return lm.db.DeleteBook(id) }

func (lm *LibraryManager) FindBook(id int64) (*Book, bool, error) { return lm.db.FindBook(id) }
func (lm *LibraryManager) GetAllBooks() ([]*Book, error)          { return lm.db.GetAllBooks() }

// ------------------ Search ------------------

func (lm *LibraryManager) SearchBooks(q string) ([]*Book, error) {
	return lm.db.SearchBooks(q)
}

func (lm *LibraryManager) Statistics() (Stats, error) { return lm.db.Statistics() }

// ------------------ Catalog files ------------------

// ImportResult summarises an ImportCatalog run.
type ImportResult struct {
	Imported []int64
	Skipped  []error
}

// ImportCatalog adds every valid entry of a YAML catalog. A catalog tagged
// with the other schema is rejected before anything is stored. Invalid entries
// are skipped and reported; a storage fault stops the import.
func (lm *LibraryManager) ImportCatalog(r io.Reader) (*ImportResult, error) {
	schema, books, err := LoadCatalog(r)
	if err != nil {
		return nil, err
	}
	// Each layout persists only its own fields.
	if schema != "" && schema != lm.Schema() {
		return nil, fmt.Errorf("%w: catalog is %q, database is %q", ErrSchemaMismatch, schema, lm.Schema())
	}

	result := &ImportResult{}
	for i, b := range books {
		if b == nil {
			result.Skipped = append(result.Skipped, fmt.Errorf("entry %d: empty", i+1))
			continue
		}
		b.ID = 0
		id, err := lm.AddBook(b)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				result.Skipped = append(result.Skipped, fmt.Errorf("entry %d: %w", i+1, err))
				continue
			}
			return result, err
		}
		result.Imported = append(result.Imported, id)
	}
	return result, nil
}

// ImportCatalogFile reads the catalog at path (relative paths resolve from cwd).
func (lm *LibraryManager) ImportCatalogFile(path string) (*ImportResult, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return lm.ImportCatalog(f)
}

// ExportCatalog writes every book, in title order, as a YAML catalog.
func (lm *LibraryManager) ExportCatalog(w io.Writer) (int, error) {
	books, err := lm.db.GetAllBooks()
	if err != nil {
		return 0, err
	}
	if err := WriteCatalog(w, lm.Schema(), books); err != nil {
		return 0, err
	}
	return len(books), nil
}

// ------------------ Utilities ------------------

func normalize(b *Book) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Category = strings.TrimSpace(b.Category)
	b.Genre = strings.TrimSpace(b.Genre)
}

// PrettyBook formats a book as one plain row for lists.
func PrettyBook(b *Book, schema Schema) string {
	if schema == SchemaReading {
		year := "-"
		if b.Year != 0 {
			year = fmt.Sprintf("%d", b.Year)
		}
		return fmt.Sprintf("%-5d %-30s %-25s %-6s %-15s %t", b.ID, b.Title, b.Author, year, b.Genre, b.Read)
	}
	added := ""
	if !b.AddedAt.IsZero() {
		added = b.AddedAt.Format(addedDateLayout)
	}
	return fmt.Sprintf("%-5d %-30s %-25s %-15s %-15s %-10s %-19s %s", b.ID, b.Title, b.Author, b.ISBN, b.Category, b.Status, added, b.Notes)
}
