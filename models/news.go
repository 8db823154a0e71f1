package models

import (
	"time"
)

// RawHeadline is a headline as returned by a news provider, before
// AI summarization.
type RawHeadline struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsItem is a headline paired with its one-sentence AI summary. When
// summarization fails the Summary carries the original title verbatim.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary"`
}
