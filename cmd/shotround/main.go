package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"shotround/internal/bootstrap"
)

func main() {
	var opts bootstrap.Options
	flag.StringVar(&opts.ConfigPath, "config", "config.yaml", "configuration file path")
	flag.StringVar(&opts.SingleFile, "file", "", "process a single file instead of monitoring")
	flag.BoolVar(&opts.NoMonitor, "no-monitor", false, "disable monitoring")
	flag.BoolVar(&opts.TestOnly, "test", false, "validate setup and exit")
	flag.Parse()

	if err := bootstrap.Run(context.Background(), opts); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "shotround failed: %v\n", err)
		os.Exit(1)
	}
}
