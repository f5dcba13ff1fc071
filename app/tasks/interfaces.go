package tasks

import (
	"context"

	"github.com/lysyi3m/syndic/app/download"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/parser"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to manage background processing.
//
//	scheduler := NewScheduler(configCache, feedRepo, downloader, parser, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.RefreshFeed(feedConfig)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	// RefreshFeed enqueues an immediate ProcessFeedTask for feedConfig.
	RefreshFeed(feedConfig *feed.Config) (TaskInterface, error)
}

type Downloader interface {
	Download(ctx context.Context, r download.Request) (*download.Result, error)
}

type FeedParser interface {
	RunWithFormat(raw string) (*parser.Feed, parser.Format, error)
}

var (
	_ Downloader = (*download.Downloader)(nil)
	_ FeedParser = (*parser.Parser)(nil)
)
