package performance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartraise/internal/platform/apperr"
)

func TestPredictRaise(t *testing.T) {
	tests := []struct {
		name                 string
		kpi, att, peer, base float64
		want                 float64
	}{
		{name: "perfect", kpi: 100, att: 100, peer: 100, base: 50000, want: 5000},
		{name: "zero", kpi: 0, att: 0, peer: 0, base: 50000, want: 0},
		{name: "mixed", kpi: 80, att: 90, peer: 70, base: 60000, want: 4860},
		{name: "rounds", kpi: 33, att: 33, peer: 33, base: 1001, want: 33},
		{name: "no salary", kpi: 90, att: 90, peer: 90, base: 0, want: 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, PredictRaise(tc.kpi, tc.att, tc.peer, tc.base), tc.name)
	}
}

func TestPredictRaiseMonotonic(t *testing.T) {
	base := []float64{40, 60, 80, 50000}
	steps := []float64{0, 10, 25, 50, 99, 100}
	for dim := 0; dim < 4; dim++ {
		prev := -1.0
		for _, step := range steps {
			args := append([]float64(nil), base...)
			if dim == 3 {
				args[dim] = step * 1000
			} else {
				args[dim] = step
			}
			got := PredictRaise(args[0], args[1], args[2], args[3])
			assert.GreaterOrEqual(t, got, prev, "dimension %d step %v", dim, step)
			prev = got
		}
	}
}

func TestScoreBounds(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 0, 0))
	assert.InDelta(t, 1.0, Score(100, 100, 100), 1e-9)
	assert.InDelta(t, 0.84, Score(80, 90, 85), 1e-9)
}

func TestPredictValidates(t *testing.T) {
	s := &Service{}
	f := func(v float64) *float64 { return &v }

	got, err := s.Predict(context.Background(), PredictionInput{KPIScore: f(80), Attendance: f(90), PeerReview: f(70), CurrentSalary: f(60000)})
	require.NoError(t, err)
	assert.Equal(t, 4860.0, got.SuggestedRaise)
	assert.InDelta(t, 0.81, got.PerformanceScore, 1e-9)

	_, err = s.Predict(context.Background(), PredictionInput{KPIScore: f(101), Attendance: f(90), PeerReview: f(70), CurrentSalary: f(1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = s.Predict(context.Background(), PredictionInput{KPIScore: f(10), Attendance: f(90), PeerReview: f(70)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
