package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leemehh/Custom-Memory-Allocator/pool"
)

// visualizerWidth is the character width a whole pool maps to.
const visualizerWidth = 60

var (
	// Color palette
	primaryColor = lipgloss.Color("#7D56F4")
	freeColor    = lipgloss.Color("#04B575")
	usedColor    = lipgloss.Color("#FF4B4B")
	mutedColor   = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	freeStyle = lipgloss.NewStyle().Foreground(freeColor)
	usedStyle = lipgloss.NewStyle().Foreground(usedColor)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// printMemoryMap renders every block as a bar whose width is proportional
// to its share of the pool, with offsets and state alongside.
func printMemoryMap(p *pool.Pool) error {
	blocks, err := p.Blocks()
	if err != nil {
		return err
	}

	var sb strings.Builder
	for i, block := range blocks {
		width := block.PayloadSize * visualizerWidth / p.Capacity()
		if width < 1 {
			width = 1
		}

		bar := usedStyle.Render(strings.Repeat("█", width))
		state := "ALLOCATED"
		if block.Free {
			bar = freeStyle.Render(strings.Repeat("░", width))
			state = "FREE"
		}

		sb.WriteString(fmt.Sprintf("#%02d %s\n", i, bar))
		sb.WriteString(labelStyle.Render(fmt.Sprintf(
			"    %7d bytes | %-9s | %6d-%-6d", block.PayloadSize, state, block.Offset, block.End)))
		sb.WriteString("\n")
	}

	fmt.Println(boxStyle.Render("MEMORY MAP\n\n" + strings.TrimRight(sb.String(), "\n")))
	return nil
}

// printStatistics renders the allocator totals.
func printStatistics(p *pool.Pool) error {
	snap, err := p.Snapshot()
	if err != nil {
		return err
	}

	rows := []string{
		fmt.Sprintf("Capacity:            %8d bytes", snap.Capacity),
		fmt.Sprintf("Allocated:           %8d bytes", snap.Allocated),
		fmt.Sprintf("Free:                %8d bytes", snap.Free),
		fmt.Sprintf("Active allocations:  %8d", snap.ActiveAllocations),
		fmt.Sprintf("Fragmentation score: %7d%%", snap.FragmentationScore),
		fmt.Sprintf("Header size:         %8d bytes", snap.HeaderSize),
		fmt.Sprintf("Alignment:           %8d bytes", snap.Alignment),
	}

	fmt.Println(boxStyle.Render("ALLOCATOR STATISTICS\n\n" + strings.Join(rows, "\n")))
	return nil
}
