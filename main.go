package main

import (
	"os"

	"bookshelf/cli"
)

// Version information - set at build time via ldflags
var Version = "dev"

func main() {
	os.Exit(cli.Run(Version, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
