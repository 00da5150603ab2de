package library

import (
	"database/sql"
	"fmt"
	"time"
)

// addedDateLayout is how added_date is stored in the catalog schema.
const addedDateLayout = "2006-01-02 15:04:05"

type rowScanner interface {
	Scan(dest ...any) error
}

// schemaDef holds the SQL and row mapping of one books table variant. The
// id/title/author core is shared; everything after it differs.
type schemaDef struct {
	createTable  string
	columns      string
	insert       string
	update       string
	searchColumn string
	readCount    string

	insertArgs func(b *Book) []any
	updateArgs func(b *Book) []any
	scan       func(r rowScanner, b *Book) error
}

var schemas = map[Schema]*schemaDef{
	SchemaCatalog: {
		createTable: `CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            isbn TEXT,
            category TEXT,
            status TEXT DEFAULT 'To Read',
            added_date TEXT,
            notes TEXT
        );`,
		columns:      `id,title,author,COALESCE(isbn,''),COALESCE(category,''),COALESCE(status,'To Read'),COALESCE(added_date,''),COALESCE(notes,'')`,
		insert:       `INSERT INTO books(title,author,isbn,category,status,added_date,notes) VALUES(?,?,?,?,?,?,?)`,
		update:       `UPDATE books SET title=?, author=?, isbn=?, category=?, status=?, notes=? WHERE id=?`,
		searchColumn: "isbn",
		readCount:    `SELECT COUNT(*), COALESCE(SUM(status='Completed'),0) FROM books`,
		insertArgs: func(b *Book) []any {
			added := ""
			if !b.AddedAt.IsZero() {
				added = b.AddedAt.Format(addedDateLayout)
			}
			return []any{b.Title, b.Author, b.ISBN, b.Category, string(b.Status), added, b.Notes}
		},
		updateArgs: func(b *Book) []any {
			return []any{b.Title, b.Author, b.ISBN, b.Category, string(b.Status), b.Notes, b.ID}
		},
		scan: func(r rowScanner, b *Book) error {
			var status, added string
			if err := r.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, &status, &added, &b.Notes); err != nil {
				return err
			}
			b.Status = Status(status)
			if added != "" {
				t, err := time.ParseInLocation(addedDateLayout, added, time.Local)
				if err != nil {
					return fmt.Errorf("parse added_date of book %d: %w", b.ID, err)
				}
				b.AddedAt = t
			}
			return nil
		},
	},
	SchemaReading: {
		createTable: `CREATE TABLE IF NOT EXISTS books (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            year INTEGER,
            genre TEXT,
            read BOOLEAN NOT NULL DEFAULT 0
        );`,
		columns:      `id,title,author,year,COALESCE(genre,''),read`,
		insert:       `INSERT INTO books(title,author,year,genre,read) VALUES(?,?,?,?,?)`,
		update:       `UPDATE books SET title=?, author=?, year=?, genre=?, read=? WHERE id=?`,
		searchColumn: "genre",
		readCount:    `SELECT COUNT(*), COALESCE(SUM(read),0) FROM books`,
		insertArgs: func(b *Book) []any {
			return []any{b.Title, b.Author, nullYear(b.Year), b.Genre, b.Read}
		},
		updateArgs: func(b *Book) []any {
			return []any{b.Title, b.Author, nullYear(b.Year), b.Genre, b.Read, b.ID}
		},
		scan: func(r rowScanner, b *Book) error {
			var year sql.NullInt64
			if err := r.Scan(&b.ID, &b.Title, &b.Author, &year, &b.Genre, &b.Read); err != nil {
				return err
			}
			b.Year = int(year.Int64)
			return nil
		},
	},
}

// nullYear stores a blank year as NULL.
func nullYear(year int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(year), Valid: year != 0}
}

// ParseSchema maps a config or flag value to a Schema.
func ParseSchema(s string) (Schema, error) {
	schema := Schema(s)
	if _, ok := schemas[schema]; !ok {
		return "", fmt.Errorf("unknown schema %q (want %q or %q)", s, SchemaCatalog, SchemaReading)
	}
	return schema, nil
}
