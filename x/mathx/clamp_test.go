package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, 0, Clamp(-3, 0, 5))
	assert.Equal(t, 2.5, Clamp(2.5, 5, 0))
	assert.True(t, InRange(0x38, 1, 0x7F))
	assert.False(t, InRange(0x80, 1, 0x7F))
}

func TestRoundInt32(t *testing.T) {
	cases := []struct {
		in   float64
		want int32
	}{
		{2.5, 3},
		{-2.5, -3},
		{2.49, 2},
		{1e12, math.MaxInt32},
		{-1e12, math.MinInt32},
		{math.Inf(1), math.MaxInt32},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RoundInt32(c.in), "in=%v", c.in)
	}
}
