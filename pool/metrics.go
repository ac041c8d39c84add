package pool

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"

	"github.com/leemehh/Custom-Memory-Allocator/memutils"
)

// MaxEnumerateBlocks caps block enumeration as a guard against an
// unterminated sequence caused by corruption the digests did not catch.
const MaxEnumerateBlocks = 100

// BlockInfo describes one block record for external visualization. Offset
// is the byte offset of the record itself; End is one past the payload.
type BlockInfo struct {
	Offset      int
	End         int
	PayloadSize int
	Free        bool
}

// Snapshot is a point-in-time view of the allocator's totals for external
// reporting.
type Snapshot struct {
	Capacity           int
	Allocated          int
	Free               int
	ActiveAllocations  int
	HeaderSize         int
	Alignment          int
	FragmentationScore int
}

// errEnumerationCap terminates a capped walk from inside its visit callback.
var errEnumerationCap = errors.New("block enumeration cap reached")

// visitBlocks calls visit once per block record in address order, verifying
// every record before trusting it. The walk never mutates the directory; a
// record failing verification returns ErrCorruption. Accounting traversals
// use this directly so their results always cover the whole directory.
func (p *Pool) visitBlocks(visit func(info BlockInfo) error) error {
	offset := p.head()
	for {
		h, err := p.verifiedHeader(offset)
		if err != nil {
			return err
		}

		err = visit(BlockInfo{
			Offset:      int(offset),
			End:         int(offset) + HeaderSize + int(h.payloadSize),
			PayloadSize: int(h.payloadSize),
			Free:        h.isFree(),
		})
		if err != nil {
			return err
		}

		if h.next == nilOffset {
			return nil
		}
		offset = h.next
	}
}

// VisitAllBlocks is the external enumeration: visitBlocks truncated at
// MaxEnumerateBlocks records, with a diagnostic rather than an error when
// the cap is hit.
func (p *Pool) VisitAllBlocks(visit func(info BlockInfo) error) error {
	count := 0
	err := p.visitBlocks(func(info BlockInfo) error {
		if count >= MaxEnumerateBlocks {
			return errEnumerationCap
		}
		count++
		return visit(info)
	})
	if errors.Is(err, errEnumerationCap) {
		p.logger.Warn("block enumeration exceeded cap",
			slog.Int("cap", MaxEnumerateBlocks))
		return nil
	}
	return err
}

// Blocks collects the full enumeration into a slice.
func (p *Pool) Blocks() ([]BlockInfo, error) {
	var blocks []BlockInfo
	err := p.VisitAllBlocks(func(info BlockInfo) error {
		blocks = append(blocks, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// FragmentationScore reports how unevenly free space is spread across free
// blocks, as an integer percentage. Fewer than two free blocks, or no free
// bytes at all, score 0.
func (p *Pool) FragmentationScore() (int, error) {
	var freeBlocks, totalFree, largestFree int
	err := p.visitBlocks(func(info BlockInfo) error {
		if !info.Free {
			return nil
		}
		freeBlocks++
		totalFree += info.PayloadSize
		if info.PayloadSize > largestFree {
			largestFree = info.PayloadSize
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if freeBlocks < 2 || totalFree == 0 {
		return 0, nil
	}
	return 100 - largestFree*100/totalFree, nil
}

// Snapshot returns the current totals. The fragmentation score requires a
// verified traversal, so corruption encountered there surfaces here too.
func (p *Pool) Snapshot() (Snapshot, error) {
	score, err := p.FragmentationScore()
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Capacity:           p.size,
		Allocated:          p.totalAllocated,
		Free:               p.totalFree,
		ActiveAllocations:  p.activeAllocations,
		HeaderSize:         HeaderSize,
		Alignment:          Alignment,
		FragmentationScore: score,
	}, nil
}

// AddStatistics sums this pool's running totals into stats.
func (p *Pool) AddStatistics(stats *memutils.Statistics) {
	stats.PoolCount++
	stats.PoolBytes += p.size
	stats.AllocationCount += p.activeAllocations
	stats.AllocationBytes += p.totalAllocated
}

// AddDetailedStatistics sums this pool's per-block statistics into stats.
// A record failing verification aborts the traversal with ErrCorruption;
// blocks visited before the failure are already folded in.
func (p *Pool) AddDetailedStatistics(stats *memutils.DetailedStatistics) error {
	stats.PoolCount++
	stats.PoolBytes += p.size

	return p.visitBlocks(func(info BlockInfo) error {
		if info.Free {
			stats.AddUnusedRange(info.PayloadSize)
		} else {
			stats.AddAllocation(info.PayloadSize)
		}
		return nil
	})
}

// PrintDetailedMap writes the pool's totals and full block map as a JSON
// object. A record failing verification poisons the writer, so the failure
// surfaces from writer.Error rather than as truncated output.
func (p *Pool) PrintDetailedMap(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Capacity").Int(p.size)
	obj.Name("HeaderSize").Int(HeaderSize)
	obj.Name("Alignment").Int(Alignment)
	obj.Name("Allocated").Int(p.totalAllocated)
	obj.Name("Free").Int(p.totalFree)
	obj.Name("ActiveAllocations").Int(p.activeAllocations)

	score, err := p.FragmentationScore()
	if err != nil {
		writer.AddError(err)
		return
	}
	obj.Name("FragmentationScore").Int(score)

	blocksArr := obj.Name("Blocks").Array()
	defer blocksArr.End()

	err = p.visitBlocks(func(info BlockInfo) error {
		blockObj := blocksArr.Object()
		defer blockObj.End()

		blockObj.Name("Offset").Int(info.Offset)
		blockObj.Name("End").Int(info.End)
		blockObj.Name("Size").Int(info.PayloadSize)

		state := "ALLOCATED"
		if info.Free {
			state = "FREE"
		}
		blockObj.Name("State").String(state)
		return nil
	})
	if err != nil {
		writer.AddError(err)
	}
}

// BuildStatsString renders the PrintDetailedMap output as a string.
func (p *Pool) BuildStatsString() (string, error) {
	writer := jwriter.NewWriter()
	p.PrintDetailedMap(&writer)

	if err := writer.Error(); err != nil {
		return "", err
	}
	return string(writer.Bytes()), nil
}
