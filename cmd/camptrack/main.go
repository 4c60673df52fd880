package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/louisbranch/camptrack/internal/cmd/camptrack"
	"github.com/louisbranch/camptrack/internal/platform/config"
)

// main runs the camptrack operator command line.
func main() {
	cfg, err := camptrack.ParseConfig()
	if err != nil {
		config.Exitf("parse config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := camptrack.Execute(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
