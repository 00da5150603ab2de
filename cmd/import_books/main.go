package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"bookshelf/config"
	"bookshelf/library"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("import_books", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.StringP("file", "f", "books.yaml", "YAML catalog to import")
	fs.String("db", config.DefaultDatabasePath, "path to the SQLite database file")
	fs.String("schema", string(config.DefaultSchema), `table layout for a new database: "catalog" or "reading"`)
	fresh := fs.Bool("fresh", false, "remove the existing database files before importing")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: import_books [options]\n\nImport every book of a YAML catalog into the library database.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg, err := config.Load("", fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	if *fresh {
		fmt.Fprintln(stdout, "Cleaning up existing database files...")
		for _, suffix := range []string{"", "-shm", "-wal"} {
			name := cfg.Database.Path + suffix
			if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(stdout, "Warning: Could not remove %s: %v\n", name, err)
			}
		}
	}

	manager, err := library.NewLibraryManager(cfg.Database.Path, cfg.Database.Schema)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening database: %v\n", err)
		return 1
	}
	defer manager.Close()

	fmt.Fprintf(stdout, "Importing books from %s...\n", *file)
	result, err := manager.ImportCatalogFile(*file)
	if result != nil {
		for _, skipped := range result.Skipped {
			fmt.Fprintf(stdout, "Warning: skipped %v\n", skipped)
		}
		fmt.Fprintf(stdout, "\nImport complete!\n")
		fmt.Fprintf(stdout, "Successfully imported: %d books\n", len(result.Imported))
		fmt.Fprintf(stdout, "Skipped: %d\n", len(result.Skipped))
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error importing books: %v\n", err)
		return 1
	}

	if len(result.Imported) == 0 {
		return 0
	}

	fmt.Fprintln(stdout, "\nLibrary contents:")
	books, err := manager.GetAllBooks()
	if err != nil {
		fmt.Fprintf(stderr, "Error retrieving books: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%-5s %-50s %-30s\n", "ID", "Title", "Author")
	fmt.Fprintln(stdout, strings.Repeat("-", 87))
	for _, book := range books {
		fmt.Fprintf(stdout, "%-5d %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
	}
	return 0
}

// truncateString shortens s to at most maxLen characters, never splitting one.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
