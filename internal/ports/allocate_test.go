package ports

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateBase(t *testing.T) {
	tests := []struct {
		name      string
		occupied  []int
		startBase int
		blockSize int
		want      int
	}{
		{name: "empty registry returns start base", occupied: nil, startBase: 54321, blockSize: 100, want: 54321},
		{name: "start base taken", occupied: []int{54321}, startBase: 54321, blockSize: 100, want: 54421},
		{name: "two consecutive blocks taken", occupied: []int{54321, 54421}, startBase: 54321, blockSize: 100, want: 54521},
		{name: "partial overlap from below", occupied: []int{54300}, startBase: 54321, blockSize: 100, want: 54421},
		{name: "partial overlap from above", occupied: []int{54400}, startBase: 54321, blockSize: 100, want: 54521},
		{name: "adjacent block does not collide", occupied: []int{54221}, startBase: 54321, blockSize: 100, want: 54321},
		{name: "fragmented gap smaller than a block is skipped", occupied: []int{54321, 54471}, startBase: 54321, blockSize: 100, want: 54571},
		{name: "unrelated blocks far away", occupied: []int{10000, 20000}, startBase: 54321, blockSize: 100, want: 54321},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AllocateBase(tt.occupied, tt.startBase, tt.blockSize)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllocateBase_SmallestFreeMultiple(t *testing.T) {
	const start, block = 50000, 10
	occupied := []int{start}
	for k := 1; k < 20; k++ {
		got, err := AllocateBase(occupied, start, block)
		require.NoError(t, err)
		assert.Equal(t, start+k*block, got)
		occupied = append(occupied, got)
	}
}

func TestAllocateBase_Exhausted(t *testing.T) {
	const block = 1000
	var occupied []int
	for base := 60000; base <= MaxPort-block; base += block {
		occupied = append(occupied, base)
	}

	_, err := AllocateBase(occupied, 60000, block)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocationExhausted))
}

func TestAllocateBase_StartTooHigh(t *testing.T) {
	_, err := AllocateBase(nil, 65500, 100)
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}

func TestAllocateBase_InvalidBlockSize(t *testing.T) {
	_, err := AllocateBase(nil, 54321, 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAllocationExhausted))
}

func TestBuildPortMap_Scenario(t *testing.T) {
	template := "[api]\nport = 54321\n[db]\nport = 54322\n[studio]\nport = 54323\n"
	extracted := Extract(template)

	newBase, err := AllocateBase([]int{54321}, MinPort(extracted), 100)
	require.NoError(t, err)
	assert.Equal(t, 54421, newBase)

	got := BuildPortMap(extracted, newBase)
	assert.Equal(t, PortMap{"54321": "54421", "54322": "54422", "54323": "54423"}, got)
}

func TestBuildPortMap_ReconstructsOffsets(t *testing.T) {
	extracted := Extract(supabaseTemplate)
	const newBase = 60000
	m := BuildPortMap(extracted, newBase)

	for _, p := range extracted {
		newPort, ok := m[strconv.Itoa(p.Value)]
		require.True(t, ok)
		assert.Equal(t, strconv.Itoa(newBase+p.Offset), newPort)
	}
}

func TestBuildPortMap_KeepsIdentityEntries(t *testing.T) {
	extracted := Extract("[api]\nport = 54321\n[db]\nport = 54322\n")
	m := BuildPortMap(extracted, 54321)
	assert.Equal(t, PortMap{"54321": "54321", "54322": "54322"}, m)
	assert.Empty(t, m.Changed())
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(54321, 100))
	assert.NoError(t, ValidateRange(1024, 100))
	assert.NoError(t, ValidateRange(65435, 100))
	assert.ErrorIs(t, ValidateRange(80, 100), ErrInvalidRange)
	assert.ErrorIs(t, ValidateRange(65436, 100), ErrInvalidRange)
}

func TestValidateSpan(t *testing.T) {
	tight := Extract("[api]\nport = 54321\n[studio]\nport = 54420\n")
	assert.Equal(t, 99, Span(tight))
	assert.NoError(t, ValidateSpan(tight, 100))

	wide := Extract("[api]\nport = 54321\n[studio]\nport = 54421\n")
	assert.Equal(t, 100, Span(wide))
	assert.ErrorIs(t, ValidateSpan(wide, 100), ErrSpanTooWide)

	inspector := Extract("[api]\nport = 54321\n[edge_runtime]\ninspector_port = 8083\n")
	err := ValidateSpan(inspector, 100)
	require.ErrorIs(t, err, ErrSpanTooWide)
	assert.Contains(t, err.Error(), "8083..54321")
	assert.NoError(t, ValidateSpan(inspector, 46239))

	assert.Equal(t, 0, Span(nil))
}

func TestValidatePortMap(t *testing.T) {
	assert.NoError(t, ValidatePortMap(PortMap{"54321": "65535"}))
	assert.ErrorIs(t, ValidatePortMap(PortMap{"54321": "110321"}), ErrInvalidRange)
	assert.ErrorIs(t, ValidatePortMap(PortMap{"54321": "x"}), ErrInvalidRange)
}

func TestBuildPortMap_TightSpanNeverSharesPorts(t *testing.T) {
	extracted := Extract("[api]\nport = 54321\n[studio]\nport = 54399\n")
	require.NoError(t, ValidateSpan(extracted, 100))

	var occupied []int
	owner := map[string]int{}
	for env := 0; env < 5; env++ {
		base, err := AllocateBase(occupied, MinPort(extracted), 100)
		require.NoError(t, err)
		occupied = append(occupied, base)
		for _, newPort := range BuildPortMap(extracted, base) {
			prev, taken := owner[newPort]
			require.False(t, taken, "port %s handed to env %d and env %d", newPort, prev, env)
			owner[newPort] = env
		}
	}
}

func TestPortMapHelpers(t *testing.T) {
	m := PortMap{"54322": "54422", "54321": "54421", "9999": "9999"}
	assert.Equal(t, []string{"9999", "54321", "54322"}, m.SortedKeys())
	assert.Equal(t, PortMap{"54421": "54321", "54422": "54322", "9999": "9999"}, m.Inverse())
	assert.Equal(t, PortMap{"54321": "54421", "54322": "54422"}, m.Changed())
}
