package tasks

import (
	"context"
	"fmt"

	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/logger"
)

type SyncFeedConfigTask struct {
	Task
	FeedConfig *feed.Config
	feedRepo   database.FeedRepository
}

func NewSyncFeedConfigTask(feedName string, feedConfig *feed.Config, feedRepo database.FeedRepository) *SyncFeedConfigTask {
	return &SyncFeedConfigTask{
		Task:       NewTask(TaskTypeSyncFeedConfig, feedName),
		FeedConfig: feedConfig,
		feedRepo:   feedRepo,
	}
}

func (t *SyncFeedConfigTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	urlChanged, err := t.feedRepo.UpsertFeed(t.FeedConfig.Name, t.FeedConfig.URL)
	if err != nil {
		return fmt.Errorf("failed to sync feed config to database: %w", err)
	}

	logger.L.Infow("Task completed",
		"type", "SyncFeedConfig",
		"feed", t.FeedName,
		"url_changed", urlChanged,
		"duration", t.GetDuration())

	return nil
}
