package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/download"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/logger"
)

// ProcessFeedTask downloads one feed conditionally, parses it and records
// the outcome. Parsed items are counted but not stored.
type ProcessFeedTask struct {
	Task
	FeedConfig *feed.Config
	downloader Downloader
	parser     FeedParser
	feedRepo   database.FeedRepository
	now        func() time.Time
}

func NewProcessFeedTask(feedName string, feedConfig *feed.Config, downloader Downloader, parser FeedParser, feedRepo database.FeedRepository) *ProcessFeedTask {
	return &ProcessFeedTask{
		Task:       NewTask(TaskTypeProcessFeed, feedName),
		FeedConfig: feedConfig,
		downloader: downloader,
		parser:     parser,
		feedRepo:   feedRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (t *ProcessFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.FeedConfig.Settings.Enabled {
		logger.L.Debugw("Feed disabled, skipping", "feed", t.FeedName)
		return nil
	}

	stored, err := t.feedRepo.GetFeed(t.FeedName)
	if err != nil {
		return fmt.Errorf("failed to load feed state: %w", err)
	}
	if stored == nil {
		return fmt.Errorf("feed '%s' is not registered", t.FeedName)
	}

	nextFetch := t.now().Add(t.FeedConfig.Settings.RefreshDuration())

	fetchCtx := ctx
	if timeout := t.FeedConfig.Settings.TimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := t.downloader.Download(fetchCtx, download.Request{
		URL:          t.FeedConfig.URL,
		ETag:         stored.ETag,
		LastModified: stored.LastModified,
	})
	if err != nil {
		t.recordFailure(statusOf(err), err, nextFetch)
		return fmt.Errorf("failed to fetch feed: %w", err)
	}

	if result.NotModified {
		if err := t.feedRepo.UpdateFetchNotModified(t.FeedName, result.StatusCode, nextFetch); err != nil {
			return fmt.Errorf("failed to record not-modified fetch: %w", err)
		}

		logger.L.Infow("Task completed",
			"type", "ProcessFeed",
			"feed", t.FeedName,
			"duration", t.GetDuration(),
			"status", result.StatusCode,
			"modified", false)
		return nil
	}

	parsed, format, err := t.parser.RunWithFormat(result.Content)
	if err != nil {
		t.recordFailure(result.StatusCode, err, nextFetch)
		return fmt.Errorf("failed to parse feed: %w", err)
	}

	err = t.feedRepo.UpdateFetchSuccess(t.FeedName, database.FetchSuccess{
		Title:        parsed.Name,
		WebURL:       parsed.WebURI,
		CanonicalURL: parsed.CanonicalURI,
		HubURL:       parsed.HubURI,
		Format:       format.String(),
		ItemCount:    len(parsed.Items),
		ETag:         result.ETag,
		LastModified: result.LastModified,
		Status:       result.StatusCode,
		RedirectURL:  result.RedirectURL,
		Encoding:     result.Encoding,
		NextFetchAt:  nextFetch,
	})
	if err != nil {
		return fmt.Errorf("failed to store fetch result: %w", err)
	}

	logger.L.Infow("Task completed",
		"type", "ProcessFeed",
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"status", result.StatusCode,
		"format", format.String(),
		"version", parsed.Version,
		"encoding", result.Encoding,
		"items", len(parsed.Items))

	if result.RedirectURL != "" {
		logger.L.Warnw("Feed redirected", "feed", t.FeedName, "from", t.FeedConfig.URL, "to", result.RedirectURL)
	}

	return nil
}

func (t *ProcessFeedTask) recordFailure(status int, cause error, nextFetch time.Time) {
	if err := t.feedRepo.UpdateFetchFailure(t.FeedName, status, cause.Error(), nextFetch); err != nil {
		logger.L.Errorw("Failed to record fetch failure", "feed", t.FeedName, "error", err)
	}
}

// statusOf returns the HTTP status carried by err, or 0 for transport errors.
func statusOf(err error) int {
	var httpErr *download.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
