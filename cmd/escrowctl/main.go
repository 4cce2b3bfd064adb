// Command escrowctl is a terminal client for the escrow dashboard backend.
// The session is kept between runs and renewed automatically.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/safescrow/dashboard/internal/client/cli"
	"github.com/safescrow/dashboard/internal/client/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, args, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if err := cli.NewApp(cfg, os.Stdin, os.Stdout, os.Stderr).Run(ctx, args); err != nil {
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(os.Stderr, "escrowctl: %v\n", err)
		return 1
	}
	return 0
}
