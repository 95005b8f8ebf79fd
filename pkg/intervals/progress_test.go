package intervals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name    string
		covered float64
		total   float64
		want    float64
	}{
		{"sintel first hundred seconds", 100, 888, 11.26},
		{"nothing watched", 0, 888, 0},
		{"fully watched", 888, 888, 100},
		{"over-covered clamps", 1000, 888, 100},
		{"zero total treated as one", 0.5, 0, 50},
		{"negative total treated as one", 2, -10, 100},
		{"negative covered clamps", -5, 100, 0},
		{"NaN total treated as one", 0.25, math.NaN(), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(tt.covered, tt.total)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCovered(t *testing.T) {
	assert.Equal(t, 0.0, Covered(nil))
	assert.Equal(t, 30.0, Covered([]Interval{{Start: 0, End: 10}, {Start: 50, End: 70}}))
	assert.Equal(t, 10.0, Covered([]Interval{{Start: 0, End: 10}, {Start: 9, End: 3}}))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 11.26, Round2(11.2612612))
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 3.0, Round2(3))
}
