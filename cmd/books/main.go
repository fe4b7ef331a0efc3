// Command books manages the books record store.
package main

import (
	"context"
	"os"

	"github.com/roach88/books/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
