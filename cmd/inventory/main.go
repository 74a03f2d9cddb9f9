package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tuanvumaihuynh/inventory/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", cli.ErrorMessage(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	return cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
