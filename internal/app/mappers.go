package app

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"place_reviews/internal/domain"
	"place_reviews/internal/fields"
)

// datetime layouts seen in provider payloads, tried in order
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

/********** reviews mapper **********/

func mapReviews(in []map[string]any) []domain.ReviewRecord {
	out := make([]domain.ReviewRecord, 0, len(in))
	for _, r := range in {
		out = append(out, mapReview(r))
	}
	return out
}

func mapReview(r map[string]any) domain.ReviewRecord {
	rv := domain.ReviewRecord{
		Text:         reviewAliases.String(r, "text"),
		ReviewerName: reviewAliases.String(r, "reviewer"),
		SourceURL:    reviewAliases.String(r, "url"),
		Timestamp:    reviewTimestamp(r),
	}

	// Rating → nearest integer; anything outside 1..5 becomes 0 and is never counted.
	if f, ok := reviewAliases.Float(r, "rating"); ok {
		if n := int(math.Round(f)); n >= 1 && n <= 5 {
			rv.Rating = n
		}
	}

	if n, ok := reviewAliases.Int(r, "likes"); ok && n > 0 {
		rv.LikeCount = n
	}

	// ID → prefer explicit; else synthesize a stable name-based UUID.
	if s := reviewAliases.String(r, "id"); s != "" {
		rv.ID = s
	} else {
		epoch, _ := fields.ToString(fields.Lookup(r, "time"))
		sig := strings.Join([]string{
			rv.ReviewerName,
			strconv.Itoa(rv.Rating),
			epoch,
			rv.Timestamp,
			rv.Text,
		}, "|")
		rv.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(sig)).String()
	}
	return rv
}

// reviewTimestamp prefers epoch seconds, then a parseable datetime string.
func reviewTimestamp(r map[string]any) string {
	if sec, ok := reviewAliases.Float(r, "epoch"); ok && sec > 0 {
		// some providers send milliseconds
		if sec > 1e12 {
			sec /= 1000
		}
		return time.Unix(int64(sec), 0).UTC().Format(time.RFC3339)
	}
	s := reviewAliases.String(r, "datetime")
	if s == "" {
		return ""
	}
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return ""
}
