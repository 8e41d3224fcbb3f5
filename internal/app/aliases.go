package app

import "place_reviews/internal/fields"

/********** alias registries (single source of truth) **********/

// responseAliases are resolved against the response root.
var responseAliases = fields.Registry{
	"status":           {"status", "search_metadata.status"},
	"results_location": {"results_location", "resultsLocation", "search_metadata.json_endpoint"},
	"error":            {"error", "error_message", "errorMessage"},
	"next_page_token":  {"serpapi_pagination.next_page_token", "next_page_token", "nextPageToken", "pagination.next_page_token"},
	"records":          {"reviews", "reviews_data"},
	// data is [[place]] or [place]; the rest are SerpApi shapes
	"place": {"data.0.0", "data.0", "place_info", "place_results", "local_results.0"},
}

// placeAliases are resolved against the place record found via responseAliases["place"].
var placeAliases = fields.Registry{
	"location_id":     {"place_id", "google_id", "data_id", "id"},
	"total":           {"reviews", "reviews_count", "user_ratings_total", "user_review_count"},
	"average":         {"rating", "review_rating_average"},
	"histogram":       {"reviews_per_score", "reviews_per_rating", "rating_histogram"},
	"records":         {"reviews_data", "reviews"},
	"next_page_token": {"reviews_next_page_token", "next_page_token"},
}

var reviewAliases = fields.Registry{
	"id":       {"review_id", "id", "reviewId"},
	"rating":   {"review_rating", "rating", "rating.value", "score"},
	"text":     {"snippet", "text", "review_text", "extracted_snippet.original", "comment"},
	"reviewer": {"user.name", "author_title", "reviewer", "reviewer.name", "author_name", "author"},
	"epoch":    {"time", "review_timestamp"},
	"datetime": {"datetime", "iso_date", "review_datetime_utc", "date"},
	"url":      {"source", "url", "review_link", "link"},
	"likes":    {"likes", "review_likes", "likeCount"},
}
