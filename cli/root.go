// Package cli wires the bookshelf commands onto a LibraryManager.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookshelf/config"
	"bookshelf/library"
)

// app carries what the commands share for one invocation. The manager is
// opened on first use and closed when Run returns.
type app struct {
	cfgFile string
	cfg     *config.Config
	mgr     *library.LibraryManager

	scanner    *bufio.Scanner
	isTerminal func() bool
}

// Run executes the command line in args and returns the process exit code.
func Run(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{isTerminal: func() bool { return stdinIsTerminal(stdin) }}
	return a.execute(version, args, stdin, stdout, stderr)
}

func (a *app) execute(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	defer a.close()

	root := a.rootCommand(version)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}

func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) rootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "bookshelf",
		Short:   "Track the books you own and read",
		Version: version,
		Long: `bookshelf keeps a personal list of books in a local SQLite file.

Configuration is read from flags, BOOKSHELF_* environment variables
(BOOKSHELF_DATABASE_PATH, BOOKSHELF_DATABASE_SCHEMA, BOOKSHELF_VERBOSE),
a .env file in the working directory, or a YAML file given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Argument errors above this point still print usage.
			cmd.SilenceUsage = true

			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			log.SetOutput(io.Discard)
			if cfg.Verbose {
				log.SetOutput(cmd.ErrOrStderr())
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "path to a YAML config file")
	pf.String("db", config.DefaultDatabasePath, "path to the SQLite database file")
	pf.String("schema", string(config.DefaultSchema), `table layout for new databases: "catalog" or "reading"`)
	pf.BoolP("verbose", "v", false, "log database activity to stderr")

	root.AddCommand(
		a.addCommand(),
		a.searchCommand(),
		a.showCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.listCommand(),
		a.statsCommand(),
		a.importCommand(),
		a.exportCommand(),
	)
	return root
}

// manager opens the configured database on first call.
func (a *app) manager() (*library.LibraryManager, error) {
	if a.mgr != nil {
		return a.mgr, nil
	}
	mgr, err := library.NewLibraryManager(a.cfg.Database.Path, a.cfg.Database.Schema)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.mgr = mgr
	return mgr, nil
}

func (a *app) close() {
	if a.mgr != nil {
		a.mgr.Close()
		a.mgr = nil
	}
}
