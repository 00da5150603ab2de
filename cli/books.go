package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bookshelf/library"
)

// bookFlags are the editable fields shared by add and update. Fields that do
// not belong to the database's schema are accepted and ignored.
type bookFlags struct {
	title, author, isbn, category, status, notes, genre string
	year                                                int
	read                                                bool
}

func (f *bookFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.title, "title", "t", "", "book title")
	fs.StringVarP(&f.author, "author", "a", "", "book author")
	fs.StringVar(&f.isbn, "isbn", "", "ISBN (catalog schema)")
	fs.StringVar(&f.category, "category", "", "category (catalog schema)")
	fs.StringVar(&f.status, "status", string(library.StatusToRead), `"To Read", "Reading" or "Completed" (catalog schema)`)
	fs.StringVar(&f.notes, "notes", "", "free-text notes (catalog schema)")
	fs.IntVar(&f.year, "year", 0, "publication year, 0 for blank (reading schema)")
	fs.StringVar(&f.genre, "genre", "", "genre (reading schema)")
	fs.BoolVar(&f.read, "read", false, "mark as read (reading schema)")
}

// apply copies every flag that was explicitly set onto b. With all=true the
// flag defaults are copied as well.
func (f *bookFlags) apply(fs *pflag.FlagSet, b *library.Book, all bool) {
	set := func(name string) bool { return all || fs.Changed(name) }
	if set("title") {
		b.Title = f.title
	}
	if set("author") {
		b.Author = f.author
	}
	if set("isbn") {
		b.ISBN = f.isbn
	}
	if set("category") {
		b.Category = f.category
	}
	if set("status") {
		b.Status = library.Status(f.status)
	}
	if set("notes") {
		b.Notes = f.notes
	}
	if set("year") {
		b.Year = f.year
	}
	if set("genre") {
		b.Genre = f.genre
	}
	if set("read") {
		b.Read = f.read
	}
}

func (a *app) addCommand() *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"add_book"},
		Short:   "Add a book",
		Example: `  bookshelf add --title Dune --author "Frank Herbert" --status Reading
  bookshelf --schema reading add -t Dune -a Herbert --year 1965 --genre SF --read`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}

			var b library.Book
			f.apply(cmd.Flags(), &b, true)

			// Fall back to prompting only when someone is at the keyboard.
			if a.isTerminal() {
				if strings.TrimSpace(b.Title) == "" {
					if b.Title, err = a.prompt(cmd, "Enter Book Title: "); err != nil {
						return err
					}
				}
				if strings.TrimSpace(b.Author) == "" {
					if b.Author, err = a.prompt(cmd, "Enter Author Name: "); err != nil {
						return err
					}
				}
			}

			id, err := mgr.AddBook(&b)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book added successfully! Book ID: %d\n", id)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Find books by title, author, and ISBN or genre",
		Long: `Search matches the query as a case-insensitive substring of the title,
the author, and the ISBN (catalog schema) or genre (reading schema).
An empty query lists every book. % and _ act as wildcards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			books, err := mgr.SearchBooks(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found.")
				return nil
			}
			a.printBooks(cmd, books)
			return nil
		},
	}
}

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show one book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			b, ok, err := mgr.FindBook(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: id %d", library.ErrBookNotFound, id)
			}
			a.printBooks(cmd, []*library.Book{b})
			return nil
		},
	}
}

func (a *app) updateCommand() *cobra.Command {
	var f bookFlags
	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"update_book"},
		Short:   "Edit a book",
		Long: `Update overwrites the book's fields in one statement. Fields without a flag
keep their current value.`,
		Example: `  bookshelf update 3 --status Completed --notes "loved it"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			b, ok, err := mgr.FindBook(id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: id %d", library.ErrBookNotFound, id)
			}

			f.apply(cmd.Flags(), b, false)
			updated, err := mgr.UpdateBook(b)
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("%w: id %d", library.ErrBookNotFound, id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Book updated successfully!")
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"delete_book"},
		Short:   "Delete a book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			deleted, err := mgr.DeleteBook(id)
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%w: id %d", library.ErrBookNotFound, id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Book deleted successfully!")
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"list_books", "display"},
		Short:   "List every book by title",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			books, err := mgr.GetAllBooks()
			if err != nil {
				return err
			}
			a.printBooks(cmd, books)
			return nil
		},
	}
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count read and unread books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			s, err := mgr.Statistics()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total books: %d\n", s.Total)
			fmt.Fprintf(out, "Read: %d\n", s.Read)
			fmt.Fprintf(out, "Unread: %d\n", s.Total-s.Read)
			fmt.Fprintf(out, "Read percentage: %.2f%%\n", s.Percent)
			return nil
		},
	}
}

func (a *app) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add every book from a YAML catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			res, err := mgr.ImportCatalogFile(args[0])
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported: %d books\n", len(res.Imported))
				for _, skipped := range res.Skipped {
					fmt.Fprintf(out, "Skipped %v\n", skipped)
				}
			}
			return err
		},
	}
}

func (a *app) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every book as a YAML catalog (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err := mgr.ExportCatalog(cmd.OutOrStdout())
				return err
			}

			f, err := os.Create(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			n, err := mgr.ExportCatalog(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d books to %s\n", n, args[0])
			return nil
		},
	}
}

func (a *app) printBooks(cmd *cobra.Command, books []*library.Book) {
	out := cmd.OutOrStdout()
	for _, b := range books {
		fmt.Fprintln(out, library.PrettyBook(b, a.cfg.Database.Schema))
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book ID: %s", s)
	}
	return id, nil
}
