// Package main is the pinio command itself.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.viam.com/pinio/cli"
)

func main() {
	// Ctrl+C cancels the running command, which lets watch stop reporting and close the board.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args)
	stop()
	if err != nil {
		cli.Errorf(os.Stderr, "%v", err)
		os.Exit(1)
	}
}
