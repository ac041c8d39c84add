package pool

import (
	"github.com/cockroachdb/errors"
)

// computeChecksum sums the serialized bytes of every header field except
// the digest itself. The digest is meant to catch accidental overwrites of
// block metadata, not adversarial tampering.
func computeChecksum(h *blockHeader) uint32 {
	var encoded [checksumFieldOffset]byte
	h.encodeFields(encoded[:])

	var sum uint32
	for _, b := range encoded {
		sum += uint32(b)
	}
	return sum
}

// verifyHeader checks the record's magic tag and digest. No header field
// may be trusted until this has passed; callers that fail verification must
// short-circuit rather than continue traversal.
func verifyHeader(h *blockHeader) error {
	if h.magic != magicCookie {
		return errors.Wrapf(ErrCorruption, "invalid magic cookie %#x", h.magic)
	}
	if computed := computeChecksum(h); computed != h.checksum {
		return errors.Wrapf(ErrCorruption, "checksum mismatch: stored %#x, computed %#x", h.checksum, computed)
	}
	return nil
}
