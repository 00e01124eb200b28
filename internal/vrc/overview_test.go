package vrc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOverviewCountLiteralNonZeroSlots(t *testing.T) {
	// Scenario: overview_offset[0..4] valid, [5..6] = 0 -> count is 5, not 6.
	th := &TileHeader{OverviewOffset: [7]uint32{100, 200, 300, 400, 500, 0, 0}}
	require.Equal(t, 5, th.OverviewCount())
}

func TestSelectOverviewDirectHit(t *testing.T) {
	th := &TileHeader{OverviewOffset: [7]uint32{100, 200, 0, 0, 0, 0, 0}}
	offset, shrink, ok := SelectOverview(th, -1)
	require.True(t, ok)
	require.Equal(t, int64(100), offset)
	require.Equal(t, 1, shrink)

	offset, shrink, ok = SelectOverview(th, 0)
	require.True(t, ok)
	require.Equal(t, int64(200), offset)
	require.Equal(t, 1, shrink)
}

func TestSelectOverviewFallsBackToFinerLevel(t *testing.T) {
	th := &TileHeader{OverviewOffset: [7]uint32{100, 200, 0, 0, 0, 0, 0}}
	offset, shrink, ok := SelectOverview(th, 1)
	require.True(t, ok)
	require.Equal(t, int64(200), offset)
	require.Equal(t, 2, shrink)
}

func TestSelectOverviewUnavailable(t *testing.T) {
	th := &TileHeader{}
	_, _, ok := SelectOverview(th, 0)
	require.False(t, ok)

	_, _, ok = SelectOverview(th, 10)
	require.False(t, ok)
}

func TestValidOverviewOffset(t *testing.T) {
	require.True(t, validOverviewOffset(16, 1000))
	require.False(t, validOverviewOffset(15, 1000))
	require.False(t, validOverviewOffset(1000, 1000))
}
