package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leemehh/Custom-Memory-Allocator/pool"
)

var (
	fragmentBlocks    int
	fragmentBlockSize int
)

func init() {
	cmd := newFragmentCmd()
	cmd.Flags().IntVar(&fragmentBlocks, "blocks", 8, "Number of blocks to allocate")
	cmd.Flags().IntVar(&fragmentBlockSize, "block-size", 512, "Size in bytes of each block")
	rootCmd.AddCommand(cmd)
}

func newFragmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fragment",
		Short: "Show fragmentation building up and coalescing away",
		Long: `The fragment command allocates a run of equal-sized blocks, releases
every other one to shatter the free space, then releases the rest so the
gaps coalesce back together. The fragmentation score prints at each stage.

Example:
  pooldemo fragment
  pooldemo fragment --blocks 16 --block-size 256`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFragment()
		},
	}
}

func runFragment() error {
	p, err := pool.NewPool(pool.PoolCreateInfo{Logger: newLogger()})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("FRAGMENTATION DEMO"))

	handles := make([]pool.Handle, 0, fragmentBlocks)
	for i := 0; i < fragmentBlocks; i++ {
		handle, err := p.Allocate(fragmentBlockSize)
		if err != nil {
			return err
		}
		handles = append(handles, handle)
	}

	if err := printMemoryMap(p); err != nil {
		return err
	}

	// Shatter the free space by releasing every other block.
	for i := 0; i < len(handles); i += 2 {
		if err := p.Release(handles[i]); err != nil {
			return err
		}
	}

	if err := printMemoryMap(p); err != nil {
		return err
	}
	if err := printStatistics(p); err != nil {
		return err
	}

	for i := 1; i < len(handles); i += 2 {
		if err := p.Release(handles[i]); err != nil {
			return err
		}
	}

	if err := printMemoryMap(p); err != nil {
		return err
	}
	if err := printStatistics(p); err != nil {
		return err
	}

	return p.Destroy()
}
