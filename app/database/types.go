package database

import (
	"time"
)

// Feed is the stored state of one subscription: what the last successful
// parse reported about the feed, the HTTP cache validators, and the outcome
// of the most recent fetch. Items are not stored.
type Feed struct {
	ID           string // Database UUID
	Name         string // Configuration feed identifier derived from filename
	FeedURL      string // Feed URL from configuration
	Title        string
	WebURL       string
	CanonicalURL string
	HubURL       string
	Format       string // rss, atom or rdf
	ItemCount    int

	ETag         string
	LastModified string

	LastStatus  int    // HTTP status of the last fetch, 0 for transport errors
	LastError   string // empty after a successful fetch
	RedirectURL string
	Encoding    string

	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FetchSuccess is what a successful download and parse leaves behind.
type FetchSuccess struct {
	Title        string
	WebURL       string
	CanonicalURL string
	HubURL       string
	Format       string
	ItemCount    int

	ETag         string
	LastModified string
	Status       int
	RedirectURL  string
	Encoding     string

	NextFetchAt time.Time
}
