package pool

import (
	"github.com/cockroachdb/errors"
)

// Validate walks the whole block directory and checks its structural
// invariants: record digests, link reciprocity, contiguity of the
// partition, and agreement between the directory and the running totals.
// When the allocator is functioning correctly this cannot fail; it exists
// to diagnose corruption and implementation bugs, and runs on every
// allocate/release under the debug_pool_utils build tag.
func (p *Pool) Validate() error {
	var (
		coveredBytes   int
		freeBytes      int
		allocatedBytes int
		activeCount    int
	)

	offset := p.head()
	expectedPrev := nilOffset
	for {
		h, err := p.verifiedHeader(offset)
		if err != nil {
			return err
		}

		if h.prev != expectedPrev {
			return errors.Newf("block at offset %d has prev link %d, expected %d", offset, h.prev, expectedPrev)
		}
		if int(h.payloadSize)%Alignment != 0 {
			return errors.Newf("block at offset %d has misaligned payload size %d", offset, h.payloadSize)
		}

		coveredBytes += HeaderSize + int(h.payloadSize)
		if h.isFree() {
			freeBytes += int(h.payloadSize)
		} else {
			allocatedBytes += int(h.payloadSize)
			activeCount++
		}

		if h.next == nilOffset {
			break
		}
		if h.next != offset+HeaderSize+h.payloadSize {
			return errors.Newf("block at offset %d is not contiguous with its next link %d", offset, h.next)
		}

		expectedPrev = offset
		offset = h.next
	}

	if coveredBytes != p.size {
		return errors.Newf("directory covers %d bytes, but the pool capacity is %d", coveredBytes, p.size)
	}
	if freeBytes != p.totalFree {
		return errors.Newf("counted %d free bytes, but the running total is %d", freeBytes, p.totalFree)
	}
	if allocatedBytes != p.totalAllocated {
		return errors.Newf("counted %d allocated bytes, but the running total is %d", allocatedBytes, p.totalAllocated)
	}
	if activeCount != p.activeAllocations {
		return errors.Newf("counted %d allocated blocks, but the running total is %d", activeCount, p.activeAllocations)
	}
	if p.handles.Count() != activeCount {
		return errors.Newf("handle registry holds %d entries, but %d blocks are allocated", p.handles.Count(), activeCount)
	}

	return nil
}
