// Package main is the entry point for the ship CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opmodel/ship/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			stop()
			os.Exit(exitErr.Code)
		}
		stop()
		os.Exit(cmd.ExitCodeFromError(err))
	}
}
