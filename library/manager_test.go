package library

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, schema Schema) *LibraryManager {
	t.Helper()
	dir := t.TempDir()
	mgr, err := NewLibraryManager(filepath.Join(dir, "lib.db"), schema)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestAddBookDefaults(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)
	fixed := time.Date(2024, 3, 1, 10, 30, 15, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	id, err := mgr.AddBook(&Book{Title: "  Dune ", Author: "Herbert"})
	require.NoError(t, err)

	b, ok, err := mgr.FindBook(id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, StatusToRead, b.Status)
	assert.True(t, fixed.Equal(b.AddedAt), "added at %v", b.AddedAt)
}

func TestAddBookRejectsMissingFields(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)

	_, err := mgr.AddBook(&Book{Title: "   ", Author: ""})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "title", verr.Fields[0].Field)
	assert.Equal(t, "author", verr.Fields[1].Field)

	all, err := mgr.GetAllBooks()
	require.NoError(t, err)
	assert.Empty(t, all, "store must not be touched on validation failure")
}

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name    string
		book    Book
		wantErr string
	}{
		{name: "valid", book: Book{Title: "Dune", Author: "Herbert"}},
		{name: "valid status", book: Book{Title: "Dune", Author: "Herbert", Status: StatusCompleted}},
		{name: "bad status", book: Book{Title: "Dune", Author: "Herbert", Status: "Abandoned"}, wantErr: "Status must be one of"},
		{name: "negative year", book: Book{Title: "Dune", Author: "Herbert", Year: -1}, wantErr: "Year must be between"},
		{name: "missing author", book: Book{Title: "Dune"}, wantErr: "Author is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBook(&tt.book)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateBookKeepsAddedDate(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)
	id, err := mgr.AddBook(&Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	before, _, err := mgr.FindBook(id)
	require.NoError(t, err)

	b := *before
	b.Status = StatusReading
	b.AddedAt = time.Time{}
	updated, err := mgr.UpdateBook(&b)
	require.NoError(t, err)
	assert.True(t, updated)

	after, _, err := mgr.FindBook(id)
	require.NoError(t, err)
	assert.Equal(t, StatusReading, after.Status)
	assert.True(t, before.AddedAt.Equal(after.AddedAt))
}

func TestUpdateBookValidates(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)
	id, err := mgr.AddBook(&Book{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	_, err = mgr.UpdateBook(&Book{ID: id, Title: "", Author: "Herbert", Status: StatusToRead})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	b, _, err := mgr.FindBook(id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
}

func TestImportCatalog(t *testing.T) {
	mgr := newManager(t, SchemaReading)
	yml := `
schema: reading
books:
  - title: Dune
    author: Frank Herbert
    year: 1965
    genre: SF
    read: true
  - title: ""
    author: Nobody
  - title: Emma
    author: Jane Austen
`
	res, err := mgr.ImportCatalog(strings.NewReader(yml))
	require.NoError(t, err)
	assert.Len(t, res.Imported, 2)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0].Error(), "entry 2")

	s, err := mgr.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Read)
}

func TestImportCatalogRejectsUnknownFields(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)

	_, err := mgr.ImportCatalog(strings.NewReader("books:\n  - title: Dune\n    publisher: Chilton\n"))
	assert.Error(t, err)
}

func TestImportCatalogFile(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte("books:\n  - title: Dune\n    author: Herbert\n    status: Completed\n"), 0o644))

	res, err := mgr.ImportCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, res.Imported, 1)

	b, _, err := mgr.FindBook(res.Imported[0])
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)
}

func TestExportThenImport(t *testing.T) {
	src := newManager(t, SchemaCatalog)
	_, err := src.AddBook(&Book{Title: "Foundation", Author: "Asimov", ISBN: "978-0553", Notes: "classic"})
	require.NoError(t, err)
	_, err = src.AddBook(&Book{Title: "Dune", Author: "Herbert", Status: StatusCompleted})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := src.ExportCatalog(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "schema: catalog")

	dst := newManager(t, SchemaCatalog)
	res, err := dst.ImportCatalog(&buf)
	require.NoError(t, err)
	assert.Len(t, res.Imported, 2)

	found, err := dst.SearchBooks("0553")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "classic", found[0].Notes)
}

func TestPrettyBook(t *testing.T) {
	line := PrettyBook(&Book{ID: 7, Title: "Dune", Author: "Herbert", Year: 1965, Read: true}, SchemaReading)
	assert.True(t, strings.HasPrefix(line, "7 "))
	assert.Contains(t, line, "1965")
	assert.Contains(t, line, "true")

	line = PrettyBook(&Book{ID: 1, Title: "Dune", Author: "Herbert", Status: StatusToRead}, SchemaCatalog)
	assert.Contains(t, line, "To Read")
}

func TestImportCatalogRejectsOtherSchema(t *testing.T) {
	mgr := newManager(t, SchemaCatalog)
	yml := `
schema: reading
books:
  - title: Dune
    author: Herbert
    year: 1965
    genre: SF
    read: true
`
	res, err := mgr.ImportCatalog(strings.NewReader(yml))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Nil(t, res)

	all, err := mgr.GetAllBooks()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportCatalogWithoutSchemaTag(t *testing.T) {
	mgr := newManager(t, SchemaReading)

	res, err := mgr.ImportCatalog(strings.NewReader("books:\n  - title: Dune\n    author: Herbert\n    year: 1965\n"))
	require.NoError(t, err)
	require.Len(t, res.Imported, 1)

	b, _, err := mgr.FindBook(res.Imported[0])
	require.NoError(t, err)
	assert.Equal(t, 1965, b.Year)
}

func TestLoadCatalogReportsSchema(t *testing.T) {
	schema, books, err := LoadCatalog(strings.NewReader("schema: catalog\nbooks:\n  - title: Dune\n    author: Herbert\n"))
	require.NoError(t, err)
	assert.Equal(t, SchemaCatalog, schema)
	require.Len(t, books, 1)

	schema, books, err = LoadCatalog(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, schema)
	assert.Empty(t, books)
}
