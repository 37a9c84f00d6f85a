package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/hdbdash/internal/dash/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Execute(ctx, os.Args[1:], app.StdStreams()); err != nil {
		fmt.Fprintln(os.Stderr, app.ErrorMessage(err))
		stop()
		os.Exit(1)
	}
}
