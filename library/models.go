package library

import "time"

// Status is the reading progress of a book in the catalog schema.
type Status string

const (
	StatusToRead    Status = "To Read"
	StatusReading   Status = "Reading"
	StatusCompleted Status = "Completed"
)

// Statuses lists every accepted Status in display order.
var Statuses = []Status{StatusToRead, StatusReading, StatusCompleted}

// Schema selects which column set the books table carries. A file keeps the
// variant it was created with.
type Schema string

const (
	// SchemaCatalog stores isbn, category, status, added date and notes.
	SchemaCatalog Schema = "catalog"
	// SchemaReading stores publication year, genre and a read flag.
	SchemaReading Schema = "reading"
)

// Book is one catalog entry. Which optional fields are persisted depends on
// the Schema of the database it lives in.
type Book struct {
	ID     int64  `json:"id" yaml:"id,omitempty"`
	Title  string `json:"title" yaml:"title" validate:"required"`
	Author string `json:"author" yaml:"author" validate:"required"`

	// catalog schema
	ISBN     string    `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	Status   Status    `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,status"`
	AddedAt  time.Time `json:"added_at,omitempty" yaml:"added_at,omitempty"`
	Notes    string    `json:"notes,omitempty" yaml:"notes,omitempty"`

	// reading schema
	Year  int    `json:"year,omitempty" yaml:"year,omitempty" validate:"gte=0,lte=9999"`
	Genre string `json:"genre,omitempty" yaml:"genre,omitempty"`
	Read  bool   `json:"read,omitempty" yaml:"read,omitempty"`
}

// Stats summarises how much of the collection has been read.
type Stats struct {
	Total   int     `json:"total"`
	Read    int     `json:"read"`
	Percent float64 `json:"percent"`
}
