package library

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML layout used by import and export.
type catalogFile struct {
	Schema Schema  `yaml:"schema,omitempty"`
	Books  []*Book `yaml:"books"`
}

// LoadCatalog decodes a YAML catalog. Entries are returned as written; ids in
// the file are ignored when importing. schema is empty when the file does not
// name one.
func LoadCatalog(r io.Reader) (schema Schema, books []*Book, err error) {
	var cf catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		if err == io.EOF {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("decode catalog: %w", err)
	}
	return cf.Schema, cf.Books, nil
}

// WriteCatalog encodes books as a YAML catalog tagged with schema.
func WriteCatalog(w io.Writer, schema Schema, books []*Book) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(catalogFile{Schema: schema, Books: books}); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}
