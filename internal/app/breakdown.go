package app

import (
	"math"

	"place_reviews/internal/domain"
	"place_reviews/internal/fields"
)

// Tally is a breakdown folded from individual review records.
type Tally struct {
	Breakdown domain.Breakdown
	Count     int // records with a usable rating
	Sum       int // sum of their ratings
}

// Mean is the plain average over counted records, 0 when nothing was counted.
func (t Tally) Mean() float64 {
	if t.Count == 0 {
		return 0
	}
	return float64(t.Sum) / float64(t.Count)
}

// TallyRecords counts records per star. Ratings outside 1..5 (including the
// 0 used for unusable provider values) are skipped.
func TallyRecords(recs []domain.ReviewRecord) Tally {
	var t Tally
	for _, r := range recs {
		if r.Rating < 1 || r.Rating > 5 {
			continue
		}
		t.Breakdown.Add(r.Rating, 1)
		t.Count++
		t.Sum += r.Rating
	}
	return t
}

// BreakdownFromHistogram copies a provider per-score histogram. Missing keys
// count as 0 and values are coerced to non-negative integers. The second
// return is false when the histogram is absent or holds no reviews at all.
func BreakdownFromHistogram(h map[string]any) (domain.Breakdown, bool) {
	var b domain.Breakdown
	for k, v := range h {
		star, ok := fields.ToFloat(k)
		if !ok {
			continue
		}
		n, ok := fields.ToFloat(v)
		if !ok || n <= 0 {
			continue
		}
		b.Add(int(math.Round(star)), int(math.Round(n)))
	}
	return b, b.Total() > 0
}
