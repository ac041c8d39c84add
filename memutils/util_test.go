package memutils_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/leemehh/Custom-Memory-Allocator/memutils"
)

func TestAlignUp(t *testing.T) {
	require.Equal(t, 0, memutils.AlignUp(0, 8))
	require.Equal(t, 8, memutils.AlignUp(1, 8))
	require.Equal(t, 8, memutils.AlignUp(7, 8))
	require.Equal(t, 8, memutils.AlignUp(8, 8))
	require.Equal(t, 16, memutils.AlignUp(9, 8))
	require.Equal(t, 256, memutils.AlignUp(255, 8))
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, 0, memutils.AlignDown(7, 8))
	require.Equal(t, 8, memutils.AlignDown(8, 8))
	require.Equal(t, 8, memutils.AlignDown(15, 8))
	require.Equal(t, 248, memutils.AlignDown(255, 8))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(8, "value"))
	require.NoError(t, memutils.CheckPow2(1024, "value"))

	err := memutils.CheckPow2(24, "value")
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
}
