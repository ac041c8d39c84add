package pool

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestChecksumStable(t *testing.T) {
	h := blockHeader{
		magic:       magicCookie,
		payloadSize: 512,
		flags:       flagFree,
		next:        nilOffset,
		prev:        nilOffset,
	}

	first := computeChecksum(&h)
	require.Equal(t, first, computeChecksum(&h))

	h.checksum = first
	require.NoError(t, verifyHeader(&h))
}

func TestChecksumCoversEveryField(t *testing.T) {
	base := blockHeader{
		magic:       magicCookie,
		payloadSize: 512,
		flags:       flagFree,
		next:        536,
		prev:        nilOffset,
	}
	digest := computeChecksum(&base)

	mutations := []func(h *blockHeader){
		func(h *blockHeader) { h.payloadSize++ },
		func(h *blockHeader) { h.flags &^= flagFree },
		func(h *blockHeader) { h.next++ },
		func(h *blockHeader) { h.prev = 0 },
	}

	for _, mutate := range mutations {
		mutated := base
		mutate(&mutated)
		require.NotEqual(t, digest, computeChecksum(&mutated))
	}
}

func TestVerifyHeaderRejectsBadMagic(t *testing.T) {
	h := blockHeader{
		magic:       0xCAFEBABE,
		payloadSize: 64,
		flags:       flagFree,
		next:        nilOffset,
		prev:        nilOffset,
	}
	h.checksum = computeChecksum(&h)

	err := verifyHeader(&h)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCorruption))
}

func TestVerifyHeaderRejectsBadDigest(t *testing.T) {
	h := blockHeader{
		magic:       magicCookie,
		payloadSize: 64,
		flags:       flagFree,
		next:        nilOffset,
		prev:        nilOffset,
	}
	h.checksum = computeChecksum(&h) + 1

	err := verifyHeader(&h)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCorruption))
}
