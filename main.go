package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/journal/internal/cli"
	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/entrypoint"
	"github.com/mrlokans/journal/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "migrate":
		cfg := config.NewConfig()
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		run(cli.NewMigrateCommand(cfg), args)

	case "sweep-media":
		cfg := config.NewConfig()
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		run(cli.NewSweepMediaCommand(cfg), args)

	case "version":
		fmt.Printf("journal %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd command, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve         Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  migrate       Apply pending database schema migrations\n")
	fmt.Fprintf(os.Stderr, "  sweep-media   Remove stored media that belongs to no entry\n")
	fmt.Fprintf(os.Stderr, "  version       Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
