package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leemehh/Custom-Memory-Allocator/pool"
)

var (
	demoSize int
	demoJSON bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoSize, "size", pool.DefaultPoolSize, "Pool capacity in bytes")
	cmd.Flags().BoolVar(&demoJSON, "json", false, "Print the final pool state as JSON")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the basic allocation walkthrough",
		Long: `The demo command allocates three blocks, releases the middle one to open
a gap, then releases the rest and shows the pool coalescing back into a
single free block. The memory map and statistics print after each step.

Example:
  pooldemo demo
  pooldemo demo --size 4096
  pooldemo demo --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

func runDemo() error {
	p, err := pool.NewPool(pool.PoolCreateInfo{
		Size:   demoSize,
		Logger: newLogger(),
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("BASIC ALLOCATION DEMO"))

	p1, err := p.Allocate(128)
	if err != nil {
		return err
	}
	p2, err := p.Allocate(256)
	if err != nil {
		return err
	}
	p3, err := p.Allocate(64)
	if err != nil {
		return err
	}

	if err := printMemoryMap(p); err != nil {
		return err
	}
	if err := printStatistics(p); err != nil {
		return err
	}

	// Release the middle block to leave a gap in the pool.
	if err := p.Release(p2); err != nil {
		return err
	}
	if err := printMemoryMap(p); err != nil {
		return err
	}

	if err := p.Release(p1); err != nil {
		return err
	}
	if err := p.Release(p3); err != nil {
		return err
	}

	if err := printMemoryMap(p); err != nil {
		return err
	}
	if err := printStatistics(p); err != nil {
		return err
	}

	if demoJSON {
		stats, err := p.BuildStatsString()
		if err != nil {
			return err
		}
		fmt.Println(stats)
	}

	return p.Destroy()
}
