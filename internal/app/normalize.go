package app

import (
	"math"

	"place_reviews/internal/domain"
)

// Summary is everything the normalizer reconciles into one result.
type Summary struct {
	LocationID      string
	Source          string
	ReportedTotal   int     // provider summary total, <= 0 when absent
	ReportedAverage float64 // provider summary average, <= 0 when absent
	Breakdown       domain.Breakdown
	Complete        bool
	Truncated       bool
	Reviews         []domain.ReviewRecord
}

// Normalize picks one value per field. A provider-reported total or average
// wins over the one derived from the breakdown, even when they disagree.
func Normalize(s Summary) domain.AggregateResult {
	counted := s.Breakdown.Total()

	total := counted
	if s.ReportedTotal > 0 {
		total = s.ReportedTotal
	}

	avg := 0.0
	switch {
	case total == 0:
	case s.ReportedAverage > 0:
		avg = Round2(clamp(s.ReportedAverage, 0, 5))
	case counted > 0:
		// divide by what was counted; a reported total may cover reviews never seen
		avg = RoundRatio(s.Breakdown.WeightedSum(), counted)
	}

	return domain.AggregateResult{
		LocationID:        s.LocationID,
		TotalReviews:      total,
		AverageRating:     avg,
		Breakdown:         s.Breakdown,
		Reviews:           s.Reviews,
		BreakdownComplete: s.Complete,
		Truncated:         s.Truncated,
		Source:            s.Source,
	}
}

// Round2 rounds half-up to two decimals. The epsilon absorbs binary
// representation error, so 1.025 (stored as 1.02499...) rounds to 1.03.
func Round2(f float64) float64 {
	return math.Floor(f*100+0.5+1e-7) / 100
}

// RoundRatio is num/den rounded half-up to two decimals, computed on integers.
// den must be positive.
func RoundRatio(num, den int) float64 {
	return float64((200*num+den)/(2*den)) / 100
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}
