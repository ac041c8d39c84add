package pool

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// The block directory is the address-ordered doubly linked sequence of
// block records partitioning the whole pool. It links every block, free
// and allocated alike, so a traversal enumerates the full partition.
// Records reference each other by byte offset into the pool buffer; there
// are no pointers into the buffer anywhere.

// head returns the offset of the first block record. The directory always
// begins at the base of the pool.
func (p *Pool) head() uint32 { return 0 }

func (p *Pool) readHeader(offset uint32) blockHeader {
	return decodeHeader(p.buf[offset : offset+HeaderSize])
}

// writeHeader recomputes the record's digest and serializes it at offset.
func (p *Pool) writeHeader(offset uint32, h *blockHeader) {
	h.checksum = computeChecksum(h)
	buf := p.buf[offset : offset+HeaderSize]
	h.encodeFields(buf)
	binary.LittleEndian.PutUint32(buf[checksumFieldOffset:], h.checksum)
}

// verifiedHeader reads the record at offset and verifies it before
// returning. Every traversal step goes through here; a failure means the
// caller must stop rather than follow whatever the record's links hold.
func (p *Pool) verifiedHeader(offset uint32) (blockHeader, error) {
	if int64(offset)+HeaderSize > int64(p.size) {
		return blockHeader{}, errors.Wrapf(ErrCorruption, "block offset %d is out of bounds", offset)
	}

	h := p.readHeader(offset)
	if err := verifyHeader(&h); err != nil {
		return blockHeader{}, errors.Wrapf(err, "block at offset %d", offset)
	}
	return h, nil
}

// split shrinks the record at offset to alignedSize and inserts a new free
// record covering the remainder, relinking the right-hand neighbor. The
// record must be free and large enough to leave a residual of at least
// HeaderSize+Alignment bytes.
func (p *Pool) split(offset uint32, h *blockHeader, alignedSize uint32) error {
	residualOffset := offset + HeaderSize + alignedSize
	residual := blockHeader{
		magic:       magicCookie,
		payloadSize: h.payloadSize - alignedSize - HeaderSize,
		flags:       flagFree,
		next:        h.next,
		prev:        offset,
	}

	// Relink the old neighbor before mutating anything, so a corrupt
	// neighbor aborts the split with the directory unchanged.
	if h.next != nilOffset {
		next, err := p.verifiedHeader(h.next)
		if err != nil {
			return err
		}
		next.prev = residualOffset
		p.writeHeader(h.next, &next)
	}

	p.writeHeader(residualOffset, &residual)

	h.payloadSize = alignedSize
	h.next = residualOffset
	p.writeHeader(offset, h)

	// The residual's header is carved out of bytes that used to be free
	// payload.
	p.totalFree -= HeaderSize
	return nil
}

// merge absorbs the record b into the record a at aOffset. The two records
// must be adjacent in address order and both free. The header space of b
// returns to the free byte total.
func (p *Pool) merge(aOffset uint32, a *blockHeader, b *blockHeader) error {
	var afterB blockHeader
	if b.next != nilOffset {
		var err error
		afterB, err = p.verifiedHeader(b.next)
		if err != nil {
			return err
		}
	}

	a.payloadSize += HeaderSize + b.payloadSize
	a.next = b.next
	p.writeHeader(aOffset, a)

	if b.next != nilOffset {
		afterB.prev = aOffset
		p.writeHeader(b.next, &afterB)
	}

	p.totalFree += HeaderSize
	return nil
}
