package app

import (
	"strings"

	"place_reviews/internal/domain"
)

// snapshot is the part of a terminal provider response the pipeline reads.
type snapshot struct {
	Place           map[string]any
	LocationID      string
	ReportedTotal   int     // 0 when absent or not positive
	ReportedAverage float64 // 0 when absent
	Histogram       domain.Breakdown
	HasHistogram    bool
	Records         []map[string]any
	NextPageToken   string
}

// hasSummary reports whether the place record carries aggregate fields.
func (s snapshot) hasSummary() bool {
	return s.HasHistogram || s.ReportedTotal > 0 || s.ReportedAverage > 0
}

type jobState struct {
	pending  bool
	location string
}

func normalizedStatus(raw domain.Raw) string {
	return strings.ToLower(responseAliases.String(raw, "status"))
}

// jobStatus classifies a response for the poller. Explicit provider failures
// are returned as domain.ErrProvider.
func jobStatus(raw domain.Raw) (jobState, error) {
	status := normalizedStatus(raw)
	switch status {
	case "error", "failed", "failure":
		msg := responseAliases.String(raw, "error")
		return jobState{}, domain.NewError(domain.ErrProvider, "provider job failed", msg)
	}
	if data, ok := raw["data"].([]any); ok && len(data) > 0 {
		return jobState{}, nil
	}
	switch status {
	case "pending", "processing", "queued", "running", "in progress":
		return jobState{pending: true, location: responseAliases.String(raw, "results_location")}, nil
	}
	return jobState{}, nil
}

// interpret reads a terminal response. An error field on a response that is
// not marked successful is a provider failure; on a successful one it is
// treated as an empty result.
func interpret(raw domain.Raw) (snapshot, error) {
	if msg := responseAliases.String(raw, "error"); msg != "" && normalizedStatus(raw) != "success" {
		return snapshot{}, domain.NewError(domain.ErrProvider, "provider returned an error", msg)
	}

	var s snapshot
	s.Place = responseAliases.Map(raw, "place")
	if s.Place != nil {
		s.LocationID = placeAliases.String(s.Place, "location_id")
		if n, ok := placeAliases.Int(s.Place, "total"); ok && n > 0 {
			s.ReportedTotal = n
		}
		if f, ok := placeAliases.Float(s.Place, "average"); ok && f > 0 {
			s.ReportedAverage = f
		}
		s.Histogram, s.HasHistogram = BreakdownFromHistogram(placeAliases.Map(s.Place, "histogram"))
		s.NextPageToken = placeAliases.String(s.Place, "next_page_token")
	}

	var recs []any
	found := false
	if s.Place != nil {
		recs, found = placeAliases.Slice(s.Place, "records")
	}
	if !found {
		recs, _ = responseAliases.Slice(raw, "records")
	}
	s.Records = recordMaps(recs)

	if tok := responseAliases.String(raw, "next_page_token"); tok != "" {
		s.NextPageToken = tok
	}
	return s, nil
}

func recordMaps(in []any) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, it := range in {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
