package api

import (
	"time"

	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/tasks"
)

type Handler struct {
	configCache *feed.ConfigCache
	feedRepo    database.FeedRepository
	scheduler   tasks.TaskSchedulerInterface
	downloader  tasks.Downloader
	parser      tasks.FeedParser
	maxBodySize int64
}

type feedSummary struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Enabled         bool       `json:"enabled"`
	RefreshInterval string     `json:"refresh_interval"`
	Title           string     `json:"title"`
	Format          string     `json:"format,omitempty"`
	ItemCount       int        `json:"item_count"`
	LastStatus      int        `json:"last_status,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	LastFetchedAt   *time.Time `json:"last_fetched_at,omitempty"`
	NextFetchAt     *time.Time `json:"next_fetch_at,omitempty"`
}
