package database

import (
	"time"
)

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	// UpsertFeed registers a subscription and reports whether its URL
	// changed. A changed URL drops the stored cache validators.
	UpsertFeed(feedName, feedURL string) (bool, error)

	UpdateFetchSuccess(feedName string, result FetchSuccess) error
	UpdateFetchNotModified(feedName string, status int, nextFetch time.Time) error
	UpdateFetchFailure(feedName string, status int, message string, nextFetch time.Time) error
}
