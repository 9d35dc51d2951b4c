package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mrlokans/journal/internal/config"
	"github.com/mrlokans/journal/internal/entrypoint"
)

// SweepMediaCommand removes media directories whose entry no longer exists.
// Storage settings come from the environment like the server's.
type SweepMediaCommand struct {
	Grace   time.Duration
	Verbose bool

	cfg *config.Config
	out io.Writer
}

func NewSweepMediaCommand(cfg *config.Config) *SweepMediaCommand {
	return &SweepMediaCommand{cfg: cfg, out: os.Stdout}
}

func (cmd *SweepMediaCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sweep-media", flag.ContinueOnError)

	fs.DurationVar(&cmd.Grace, "grace", cmd.cfg.MediaSweep.Grace, "Skip directories modified more recently than this")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every removed directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sweep-media [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Remove stored media that belongs to no entry.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sweep-media\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sweep-media -grace 0s -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.Grace < 0 {
		return fmt.Errorf("grace must not be negative")
	}
	return nil
}

func (cmd *SweepMediaCommand) Run() error {
	cfg := *cmd.cfg
	cfg.MediaSweep.Grace = cmd.Grace
	// NewSweeper treats a zero grace as the default.
	if cfg.MediaSweep.Grace == 0 {
		cfg.MediaSweep.Grace = time.Nanosecond
	}

	ctx := context.Background()
	app, err := entrypoint.NewApp(ctx, &cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	result, sweepErr := app.Sweeper.Run(ctx)

	fmt.Fprintf(cmd.out, "Scanned %d directories, skipped %d recent, removed %d, failed %d\n",
		result.Scanned, result.Skipped, len(result.Removed), len(result.Failed))
	if cmd.Verbose {
		for _, dir := range result.Removed {
			fmt.Fprintf(cmd.out, "  removed %s\n", dir)
		}
		for _, dir := range result.Failed {
			fmt.Fprintf(cmd.out, "  failed  %s\n", dir)
		}
	}
	return sweepErr
}
