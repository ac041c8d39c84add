package pool

import "encoding/binary"

// Field offsets within a serialized block record.
const (
	magicFieldOffset    = 0
	sizeFieldOffset     = 4
	flagsFieldOffset    = 8
	nextFieldOffset     = 12
	prevFieldOffset     = 16
	checksumFieldOffset = 20

	// HeaderSize is the serialized size in bytes of a block record. It is
	// a multiple of Alignment, so payloads following a header stay aligned.
	HeaderSize = 24
)

const (
	// magicCookie is the sentinel tag every live block record carries. Any
	// other value signals corruption.
	magicCookie uint32 = 0xDEADBEEF

	// nilOffset marks an absent next/prev link.
	nilOffset uint32 = 0xFFFFFFFF

	flagFree uint32 = 1 << 0
)

// blockHeader is the decoded form of the record stored immediately before
// each block's payload. It is never aliased over the pool buffer; all reads
// and writes go through the encode/decode routines below.
type blockHeader struct {
	magic       uint32
	payloadSize uint32
	flags       uint32
	next        uint32
	prev        uint32
	checksum    uint32
}

func (h *blockHeader) isFree() bool { return h.flags&flagFree != 0 }

func (h *blockHeader) markFree()  { h.flags |= flagFree }
func (h *blockHeader) markTaken() { h.flags &^= flagFree }

// encodeFields serializes every field except the checksum into buf, which
// must hold at least checksumFieldOffset bytes.
func (h *blockHeader) encodeFields(buf []byte) {
	binary.LittleEndian.PutUint32(buf[magicFieldOffset:], h.magic)
	binary.LittleEndian.PutUint32(buf[sizeFieldOffset:], h.payloadSize)
	binary.LittleEndian.PutUint32(buf[flagsFieldOffset:], h.flags)
	binary.LittleEndian.PutUint32(buf[nextFieldOffset:], h.next)
	binary.LittleEndian.PutUint32(buf[prevFieldOffset:], h.prev)
}

// decodeHeader deserializes a block record from buf, which must hold at
// least HeaderSize bytes.
func decodeHeader(buf []byte) blockHeader {
	return blockHeader{
		magic:       binary.LittleEndian.Uint32(buf[magicFieldOffset:]),
		payloadSize: binary.LittleEndian.Uint32(buf[sizeFieldOffset:]),
		flags:       binary.LittleEndian.Uint32(buf[flagsFieldOffset:]),
		next:        binary.LittleEndian.Uint32(buf[nextFieldOffset:]),
		prev:        binary.LittleEndian.Uint32(buf[prevFieldOffset:]),
		checksum:    binary.LittleEndian.Uint32(buf[checksumFieldOffset:]),
	}
}
