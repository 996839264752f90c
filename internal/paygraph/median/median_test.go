package median

import (
	"strconv"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/paygraph/pkg/rng"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want float64
	}{
		{"empty", nil, 0},
		{"single", []int{3}, 3},
		{"odd", []int{1, 1, 2}, 1},
		{"even", []int{1, 2}, 1.5},
		{"even unsorted", []int{4, 1, 3, 2}, 2.5},
		{"duplicates", []int{2, 2, 2, 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.in))
		})
	}
}

func TestOf_DoesNotMutate(t *testing.T) {
	in := []int{3, 1, 2}
	_ = Of(in)
	assert.Equal(t, []int{3, 1, 2}, in)
}

func TestOf_MatchesOracle(t *testing.T) {
	r := rng.New(rng.Deterministic, 7).R("median.oracle")
	for i := 0; i < 500; i++ {
		n := 1 + r.Intn(50)
		degrees := make([]int, n)
		data := make(stats.Float64Data, n)
		for j := range degrees {
			degrees[j] = 1 + r.Intn(20)
			data[j] = float64(degrees[j])
		}
		want, err := stats.Median(data)
		require.NoError(t, err)
		assert.Equal(t, want, Of(degrees), "degrees=%v", degrees)
	}
}

func TestTruncateAndFormat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "1.00"},
		{1.5, "1.50"},
		{1.999, "1.99"},
		{2.005, "2.00"},
		{2.5, "2.50"},
		{0, "0.00"},
		{17.25, "17.25"},
	}
	for _, tt := range tests {
		t.Run(strconv.FormatFloat(tt.in, 'g', -1, 64), func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
	assert.Equal(t, 1.99, Truncate(1.999))
}
