package pool

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"

	"github.com/leemehh/Custom-Memory-Allocator/memutils"
)

const (
	// DefaultPoolSize is the capacity used when PoolCreateInfo.Size is zero.
	DefaultPoolSize = 64 * 1024

	// Alignment is the payload alignment in bytes. Every requested size is
	// rounded up to a multiple of it before the free-block search.
	Alignment = 8
)

// minPoolSize is one header plus one aligned payload, the smallest region
// that can hold a block at all.
const minPoolSize = HeaderSize + Alignment

// Handle addresses an allocated payload by its byte offset within the pool.
type Handle uint32

// NoHandle is returned by failed or zero-size allocation requests. Releasing
// it is a no-op.
const NoHandle Handle = 0

// PoolCreateInfo carries the options for NewPool. The zero value selects a
// DefaultPoolSize pool logging through slog.Default.
type PoolCreateInfo struct {
	// Size is the fixed capacity in bytes. It must be a multiple of
	// Alignment and at least large enough for a single block. Zero selects
	// DefaultPoolSize.
	Size int
	// Logger receives allocator diagnostics. Nil selects slog.Default.
	Logger *slog.Logger
}

// Pool is a fixed-capacity first-fit allocator over a single contiguous
// byte region. Blocks are carved out of the region by splitting free blocks
// and returned to it by coalescing with free neighbors; every block's
// metadata lives inside the region, guarded by a per-record digest.
//
// A Pool is not safe for concurrent use. Callers sharing one across
// goroutines must provide their own mutual exclusion.
type Pool struct {
	logger *slog.Logger
	buf    []byte
	size   int

	totalAllocated    int
	totalFree         int
	activeAllocations int

	// handles tracks every live payload handle and its granted size, for
	// the unreleased-memory report in Destroy.
	handles *swiss.Map[Handle, uint32]
}

var _ memutils.Validatable = &Pool{}

// NewPool reserves the pool region and establishes the single initial free
// block spanning it.
func NewPool(info PoolCreateInfo) (*Pool, error) {
	size := info.Size
	if size == 0 {
		size = DefaultPoolSize
	}
	logger := info.Logger
	if logger == nil {
		logger = slog.Default()
	}

	memutils.DebugCheckPow2(uint(Alignment), "pool alignment")

	if size < minPoolSize {
		return nil, errors.Newf("pool size %d cannot hold a single block (minimum %d)", size, minPoolSize)
	}
	if size%Alignment != 0 {
		return nil, errors.Newf("pool size %d is not a multiple of the %d-byte alignment", size, Alignment)
	}
	if int64(size) >= int64(nilOffset) {
		return nil, errors.Newf("pool size %d is not addressable with 32-bit offsets", size)
	}

	p := &Pool{
		logger:    logger,
		buf:       make([]byte, size),
		size:      size,
		totalFree: size - HeaderSize,
		handles:   swiss.NewMap[Handle, uint32](64),
	}

	first := blockHeader{
		magic:       magicCookie,
		payloadSize: uint32(size - HeaderSize),
		flags:       flagFree,
		next:        nilOffset,
		prev:        nilOffset,
	}
	p.writeHeader(p.head(), &first)

	p.logger.Debug("pool initialized",
		slog.Int("capacity", size),
		slog.Int("headerSize", HeaderSize),
		slog.Int("alignment", Alignment))

	return p, nil
}

// Capacity returns the fixed size in bytes of the pool region.
func (p *Pool) Capacity() int { return p.size }

// Allocate reserves a payload of at least size bytes, rounded up to the
// alignment, and returns its handle. The search is first-fit: the first
// free block in address order that can hold the request is used. A request
// for zero or fewer bytes is ignored and returns NoHandle without error.
//
// Allocate fails with ErrOutOfSpace when no block qualifies and with
// ErrCorruption when any record visited during the search fails
// verification.
func (p *Pool) Allocate(size int) (Handle, error) {
	if size <= 0 {
		// Not worth an error: there is no meaningful payload to hand out.
		p.logger.Debug("ignoring zero-size allocation request", slog.Int("size", size))
		return NoHandle, nil
	}
	// Checked before alignment rounding, which would overflow on requests
	// near MaxInt.
	if size > p.size {
		return NoHandle, errors.Wrapf(ErrOutOfSpace, "request of %d bytes exceeds the %d-byte pool", size, p.size)
	}

	memutils.DebugValidate(p)

	alignedSize := memutils.AlignUp(size, Alignment)

	offset := p.head()
	for {
		h, err := p.verifiedHeader(offset)
		if err != nil {
			return NoHandle, err
		}

		if h.isFree() && int(h.payloadSize) >= alignedSize {
			return p.commitAllocation(offset, &h, uint32(alignedSize))
		}

		if h.next == nilOffset {
			return NoHandle, errors.Wrapf(ErrOutOfSpace, "no free block of %d aligned bytes", alignedSize)
		}
		offset = h.next
	}
}

// commitAllocation marks the selected record as taken, splitting off the
// unneeded remainder when it is large enough to stand as its own block.
func (p *Pool) commitAllocation(offset uint32, h *blockHeader, alignedSize uint32) (Handle, error) {
	if h.payloadSize-alignedSize >= HeaderSize+Alignment {
		if err := p.split(offset, h, alignedSize); err != nil {
			return NoHandle, err
		}
	}
	// Otherwise the whole record is consumed as-is; the residue is too
	// small to carry a header and stays inside the block as internal
	// fragmentation until the block is freed and re-split.

	h.markTaken()
	p.writeHeader(offset, h)

	granted := int(h.payloadSize)
	p.totalAllocated += granted
	p.totalFree -= granted
	p.activeAllocations++

	handle := Handle(offset + HeaderSize)
	p.handles.Put(handle, h.payloadSize)

	p.logger.Debug("allocated block",
		slog.Int("offset", int(offset)),
		slog.Int("granted", granted),
		slog.Int("requested", int(alignedSize)))

	return handle, nil
}

// Release returns the payload addressed by handle to the free state and
// coalesces it with adjacent free blocks, next neighbor first, then
// previous. Coalescing is single-hop in each direction: a free block can
// never sit adjacent to an un-merged free run deeper than its immediate
// neighbors, so one hop per side is always enough.
//
// Releasing NoHandle is a no-op with a diagnostic. A handle that cannot
// address a payload fails with ErrBadHandle, a record that fails
// verification with ErrCorruption, and a record that is already free with
// ErrDoubleRelease; none of these change any state. A coalescing neighbor
// that fails verification is skipped with a diagnostic instead of failing
// the release.
func (p *Pool) Release(handle Handle) error {
	if handle == NoHandle {
		p.logger.Warn("ignoring release of nil handle")
		return nil
	}

	memutils.DebugValidate(p)

	if uint32(handle) < HeaderSize || int64(handle) >= int64(p.size) || uint32(handle)%Alignment != 0 {
		return errors.Wrapf(ErrBadHandle, "handle %d does not address a payload in this pool", handle)
	}
	offset := uint32(handle) - HeaderSize

	h, err := p.verifiedHeader(offset)
	if err != nil {
		return err
	}
	if h.isFree() {
		return errors.Wrapf(ErrDoubleRelease, "block at offset %d is already free", offset)
	}

	h.markFree()
	p.writeHeader(offset, &h)

	released := int(h.payloadSize)
	p.totalAllocated -= released
	p.totalFree += released
	p.activeAllocations--
	p.handles.Delete(handle)

	p.logger.Debug("released block",
		slog.Int("offset", int(offset)),
		slog.Int("payload", released))

	if h.next != nilOffset {
		next, err := p.verifiedHeader(h.next)
		switch {
		case err != nil:
			p.logger.Warn("skipping coalesce with unverifiable next neighbor",
				slog.Int("offset", int(h.next)),
				slog.Any("error", err))
		case next.isFree():
			if err := p.merge(offset, &h, &next); err != nil {
				p.logger.Warn("skipping coalesce with next neighbor",
					slog.Int("offset", int(h.next)),
					slog.Any("error", err))
			}
		}
	}

	if h.prev != nilOffset {
		prev, err := p.verifiedHeader(h.prev)
		switch {
		case err != nil:
			p.logger.Warn("skipping coalesce with unverifiable previous neighbor",
				slog.Int("offset", int(h.prev)),
				slog.Any("error", err))
		case prev.isFree():
			if err := p.merge(h.prev, &prev, &h); err != nil {
				p.logger.Warn("skipping coalesce with previous neighbor",
					slog.Int("offset", int(h.prev)),
					slog.Any("error", err))
			}
		}
	}

	return nil
}

// Destroy reports any allocations that were never released and discards the
// pool buffer. A pool with live allocations is not destroyed.
func (p *Pool) Destroy() error {
	if p.buf == nil {
		return errors.New("pool has already been destroyed")
	}

	if p.activeAllocations > 0 {
		p.handles.Iter(func(handle Handle, size uint32) bool {
			p.logger.LogAttrs(context.Background(), slog.LevelError,
				"[UNRELEASED MEMORY] unfreed allocation",
				slog.Int("handle", int(handle)),
				slog.Int("size", int(size)))
			return false
		})
		return errors.Newf("%d allocations were not released before the pool was destroyed", p.activeAllocations)
	}

	p.buf = nil
	p.handles = nil
	return nil
}
