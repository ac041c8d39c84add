package pool_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leemehh/Custom-Memory-Allocator/pool"
)

// TestAllocateReleaseLifecycle drives a pool through a full
// allocate/fragment/release cycle and checks that coalescing restores the
// original single free block at the end.
func TestAllocateReleaseLifecycle(t *testing.T) {
	p := newTestPool(t, 64*1024)

	initial, err := p.Snapshot()
	require.NoError(t, err)
	require.Equal(t, pool.Snapshot{
		Capacity:   64 * 1024,
		Free:       64*1024 - pool.HeaderSize,
		HeaderSize: pool.HeaderSize,
		Alignment:  pool.Alignment,
	}, initial)

	p1, err := p.Allocate(128)
	require.NoError(t, err)
	require.Equal(t, pool.Handle(24), p1)

	p2, err := p.Allocate(256)
	require.NoError(t, err)
	require.Equal(t, pool.Handle(176), p2)

	p3, err := p.Allocate(64)
	require.NoError(t, err)
	require.Equal(t, pool.Handle(456), p3)

	require.NoError(t, p.Validate())

	snap, err := p.Snapshot()
	require.NoError(t, err)
	require.Equal(t, 448, snap.Allocated)
	require.Equal(t, 64992, snap.Free)
	require.Equal(t, 3, snap.ActiveAllocations)

	// Punch a hole in the middle, then fold everything back together.
	require.NoError(t, p.Release(p2))
	require.NoError(t, p.Validate())

	require.NoError(t, p.Release(p1))
	require.NoError(t, p.Release(p3))
	require.NoError(t, p.Validate())

	blocks, err := p.Blocks()
	require.NoError(t, err)
	require.Equal(t, []pool.BlockInfo{
		{Offset: 0, End: 64 * 1024, PayloadSize: 64*1024 - pool.HeaderSize, Free: true},
	}, blocks)

	final, err := p.Snapshot()
	require.NoError(t, err)
	require.Equal(t, initial, final)

	require.NoError(t, p.Destroy())
}

// TestReusedSpaceKeepsInvariants hammers a pool with a mixed
// allocate/release sequence and validates the directory after every step.
func TestReusedSpaceKeepsInvariants(t *testing.T) {
	p := newTestPool(t, 16*1024)

	var live []pool.Handle
	sizes := []int{40, 300, 8, 96, 512, 16, 64}

	for round := 0; round < 3; round++ {
		for _, size := range sizes {
			handle, err := p.Allocate(size)
			require.NoError(t, err)
			live = append(live, handle)
			require.NoError(t, p.Validate())
		}

		// Release every other live handle to fragment the directory.
		var kept []pool.Handle
		for i, handle := range live {
			if i%2 == 0 {
				require.NoError(t, p.Release(handle))
				require.NoError(t, p.Validate())
			} else {
				kept = append(kept, handle)
			}
		}
		live = kept
	}

	for _, handle := range live {
		require.NoError(t, p.Release(handle))
	}
	require.NoError(t, p.Validate())

	snap, err := p.Snapshot()
	require.NoError(t, err)
	require.Zero(t, snap.ActiveAllocations)
	require.Zero(t, snap.Allocated)
	require.Equal(t, 16*1024-pool.HeaderSize, snap.Free)

	require.NoError(t, p.Destroy())
}
