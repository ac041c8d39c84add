package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leemehh/Custom-Memory-Allocator/pool"
)

var (
	statsSize  int
	statsAlloc []int
)

func init() {
	cmd := newStatsCmd()
	cmd.Flags().IntVar(&statsSize, "size", pool.DefaultPoolSize, "Pool capacity in bytes")
	cmd.Flags().IntSliceVar(&statsAlloc, "alloc", []int{128, 256, 64}, "Block sizes to allocate before reporting")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print pool statistics as JSON",
		Long: `The stats command allocates the requested block sizes and writes the
pool's detailed statistics map to stdout as a JSON object.

Example:
  pooldemo stats
  pooldemo stats --size 4096 --alloc 512,512,1024`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func runStats() error {
	p, err := pool.NewPool(pool.PoolCreateInfo{
		Size:   statsSize,
		Logger: newLogger(),
	})
	if err != nil {
		return err
	}

	handles := make([]pool.Handle, 0, len(statsAlloc))
	for _, size := range statsAlloc {
		handle, err := p.Allocate(size)
		if err != nil {
			return err
		}
		handles = append(handles, handle)
	}

	stats, err := p.BuildStatsString()
	if err != nil {
		return err
	}
	fmt.Println(stats)

	for _, handle := range handles {
		if err := p.Release(handle); err != nil {
			return err
		}
	}
	return p.Destroy()
}
