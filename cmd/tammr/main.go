// Command tammr runs tammr programs and the interactive prompt.
package main

import (
	"os"

	"github.com/thomasrohde/tammr/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
