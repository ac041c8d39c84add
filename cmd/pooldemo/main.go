package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pooldemo",
	Short: "Exercise and visualize the fixed-capacity pool allocator",
	Long: `pooldemo drives the pool allocator through scripted allocation and
release sequences, visualizing the block directory and reporting allocator
statistics after each step.`,
	Version: "1.0.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the slog logger handed to the pool. Allocator
// diagnostics go to stderr so they never interleave with the rendering.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(os.Stderr))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
