package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ReviewRecord is a single review normalized from a provider payload.
type ReviewRecord struct {
	ID           string `json:"id"`
	Rating       int    `json:"rating"` // 1..5, 0 when the provider value was unusable
	Text         string `json:"text"`
	ReviewerName string `json:"reviewerName"`
	Timestamp    string `json:"timestamp"` // RFC 3339 or ""
	SourceURL    string `json:"sourceUrl"`
	LikeCount    int    `json:"likeCount"`
}

// Breakdown counts reviews per star value. Index 0 holds 1-star counts.
// It always serializes with all five keys present.
type Breakdown [5]int

func (b Breakdown) Get(star int) int {
	if star < 1 || star > 5 {
		return 0
	}
	return b[star-1]
}

func (b *Breakdown) Add(star, n int) {
	if star < 1 || star > 5 || n <= 0 {
		return
	}
	b[star-1] += n
}

func (b Breakdown) Total() int {
	t := 0
	for _, n := range b {
		t += n
	}
	return t
}

// WeightedSum returns Σ(star × count).
func (b Breakdown) WeightedSum() int {
	s := 0
	for i, n := range b {
		s += (i + 1) * n
	}
	return s
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	m := make(map[string]int, 5)
	for i, n := range b {
		m[strconv.Itoa(i+1)] = n
	}
	return json.Marshal(m)
}

func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*b = Breakdown{}
	for k, n := range m {
		star, err := strconv.Atoi(k)
		if err != nil || star < 1 || star > 5 {
			return fmt.Errorf("breakdown: invalid star key %q", k)
		}
		if n > 0 {
			b[star-1] = n
		}
	}
	return nil
}

// AggregateResult is the canonical answer returned to callers.
type AggregateResult struct {
	LocationID        string         `json:"locationId"`
	TotalReviews      int            `json:"totalReviews"`
	AverageRating     float64        `json:"averageRating"`
	Breakdown         Breakdown      `json:"breakdown"`
	Reviews           []ReviewRecord `json:"reviews,omitempty"`
	BreakdownComplete bool           `json:"breakdownComplete"`
	Truncated         bool           `json:"truncated"`
	Source            string         `json:"source,omitempty"`
}
