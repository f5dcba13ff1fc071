package parser

import "time"

// Feed is the normalized form of one syndication feed, whatever dialect it
// was published in.
type Feed struct {
	Name         string     `json:"name,omitempty"`
	CanonicalURI string     `json:"canonical_uri,omitempty"`
	WebURI       string     `json:"web_uri,omitempty"`
	HubURI       string     `json:"hub_uri,omitempty"`
	Version      string     `json:"version,omitempty"` // RSS only
	Categories   []Category `json:"categories"`
	Items        []Item     `json:"items"`
}

// Item is one entry of a feed.
type Item struct {
	ServerID    string     `json:"server_id,omitempty"`
	Title       string     `json:"title,omitempty"`
	WebURI      string     `json:"web_uri,omitempty"`
	Author      string     `json:"author,omitempty"`
	CommentsURI string     `json:"comments_uri,omitempty"`
	Published   *time.Time `json:"published,omitempty"` // nil only for RDF items without a usable pubDate
	Content     string     `json:"content,omitempty"`
	Categories  []Category `json:"categories"`

	ParentFeedID *int `json:"parent_feed_id,omitempty"` // Atom only
}

// Category is a feed or item category. Label is only ever set for Atom.
type Category struct {
	Term  string `json:"term,omitempty"`
	Label string `json:"label,omitempty"`
}

// Format is the syndication dialect a document was recognized as.
type Format int

const (
	FormatRSS Format = iota + 1
	FormatAtom
	FormatRDF
)

func (f Format) String() string {
	switch f {
	case FormatRSS:
		return "rss"
	case FormatAtom:
		return "atom"
	case FormatRDF:
		return "rdf"
	default:
		return "unknown"
	}
}
