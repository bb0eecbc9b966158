package performance

import (
	"context"
	"math"

	"smartraise/internal/platform/validate"
)

// Weights of the linear scoring rule. Placeholder until a trained model
// replaces it.
const (
	WeightKPI        = 0.5
	WeightAttendance = 0.3
	WeightPeerReview = 0.2
	RaiseFactor      = 0.1
)

// Score folds the three metrics into [0,1].
func Score(kpiScore, attendance, peerReview float64) float64 {
	return (kpiScore*WeightKPI + attendance*WeightAttendance + peerReview*WeightPeerReview) / 100
}

// PredictRaise returns the suggested raise rounded to a whole currency unit.
func PredictRaise(kpiScore, attendance, peerReview, currentSalary float64) float64 {
	return math.Round(currentSalary * Score(kpiScore, attendance, peerReview) * RaiseFactor)
}

func (s *Service) Predict(_ context.Context, in PredictionInput) (Prediction, error) {
	if err := validate.Struct(in, "invalid prediction input"); err != nil {
		return Prediction{}, err
	}
	return Prediction{
		PerformanceScore: Score(*in.KPIScore, *in.Attendance, *in.PeerReview),
		SuggestedRaise:   PredictRaise(*in.KPIScore, *in.Attendance, *in.PeerReview, *in.CurrentSalary),
	}, nil
}
