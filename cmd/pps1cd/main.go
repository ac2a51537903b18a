// Command pps1cd runs the level-1c processing daemon in the foreground.
// It is equivalent to `pps1c daemon` and exists for service managers that
// prefer a dedicated binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"pps1c/internal/config"
	"pps1c/internal/daemonrun"
)

func main() {
	var configPath string
	var logLevel string
	flag.StringVar(&configPath, "config", "", "configuration file path")
	flag.StringVar(&logLevel, "log-level", "", "override configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(strings.TrimSpace(configPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "ensure directories: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "pps1cd: %v\n", err)
		os.Exit(1)
	}
}
