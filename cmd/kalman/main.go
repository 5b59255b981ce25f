// Package main is the kalman command itself.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	kfcli "github.com/leoorshansky/KalmanFilterExample/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := kfcli.NewApp(os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "kalman: %v\n", err)
		stop()
		os.Exit(1)
	}
}
