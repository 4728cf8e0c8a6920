package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/DoyleJ11/mapveto-backend/internal/vetoview/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "vetoview:", err)
		stop()
		os.Exit(1)
	}
}
