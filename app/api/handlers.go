package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/download"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/logger"
	"github.com/lysyi3m/syndic/app/parser"
	"github.com/lysyi3m/syndic/app/tasks"
)

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	scheduler tasks.TaskSchedulerInterface, downloader tasks.Downloader, feedParser tasks.FeedParser) *Handler {
	return &Handler{
		configCache: configCache,
		feedRepo:    feedRepo,
		scheduler:   scheduler,
		downloader:  downloader,
		parser:      feedParser,
		maxBodySize: download.DefaultMaxBytes,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	} else {
		logger.L.Errorw("Database error", "operation", "get_feed_count", "error", err)
		health["status"] = "degraded"
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	feeds, err := h.feedRepo.GetFeeds()
	if err != nil {
		logger.L.Errorw("Database error", "operation", "get_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	formats := map[string]int{}
	failing := 0
	items := 0
	for _, f := range feeds {
		if f.Format != "" {
			formats[f.Format]++
		}
		if f.LastError != "" {
			failing++
		}
		items += f.ItemCount
	}

	c.JSON(http.StatusOK, gin.H{
		"configurations": h.configCache.GetConfigCount(),
		"enabled":        len(h.configCache.GetEnabledConfigs()),
		"feeds":          len(feeds),
		"failing":        failing,
		"items":          items,
		"formats":        formats,
	})
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]feedSummary, 0, len(configs))
	for _, feedConfig := range configs {
		stored, err := h.feedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			logger.L.Errorw("Database error", "operation", "get_feed", "feed", feedConfig.Name, "error", err)
		}
		feeds = append(feeds, summarize(feedConfig, stored))
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIGetFeedDetails(c *gin.Context) {
	name := c.Param("name")

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	stored, err := h.feedRepo.GetFeed(name)
	if err != nil {
		logger.L.Errorw("Database error", "operation", "get_feed", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if stored == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in database"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    summarize(feedConfig, stored),
		"timeout": feedConfig.Settings.TimeoutDuration().String(),
		"database": gin.H{
			"id":            stored.ID,
			"web_url":       stored.WebURL,
			"canonical_url": stored.CanonicalURL,
			"hub_url":       stored.HubURL,
			"etag":          stored.ETag,
			"last_modified": stored.LastModified,
			"redirect_url":  stored.RedirectURL,
			"encoding":      stored.Encoding,
			"created_at":    stored.CreatedAt,
			"updated_at":    stored.UpdatedAt,
		},
	})
}

// APIRefreshFeed reloads the subscription file, registers it and queues an
// immediate fetch.
func (h *Handler) APIRefreshFeed(c *gin.Context) {
	name := c.Param("name")

	if _, err := h.configCache.GetConfig(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return
	}

	feedConfig, err := h.configCache.LoadConfig(name)
	if err != nil {
		logger.L.Errorw("Error reloading configuration", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reload configuration",
			"details": err.Error(),
		})
		return
	}

	if !feedConfig.Settings.Enabled {
		c.JSON(http.StatusConflict, gin.H{"error": "Feed is disabled"})
		return
	}

	if err := tasks.NewSyncFeedConfigTask(name, feedConfig, h.feedRepo).Execute(c.Request.Context()); err != nil {
		logger.L.Errorw("Error syncing feed configuration", "feed", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to sync feed configuration",
			"details": err.Error(),
		})
		return
	}

	task, err := h.scheduler.RefreshFeed(feedConfig)
	if err != nil {
		logger.L.Errorw("Error enqueueing refresh task", "feed", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"feed": gin.H{
			"name": name,
			"url":  feedConfig.URL,
		},
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

// APIParse normalizes a feed document posted as the request body.
func (h *Handler) APIParse(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodySize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	if int64(len(body)) > h.maxBodySize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Request body exceeds %d bytes", h.maxBodySize),
		})
		return
	}

	parsed, format, err := h.parser.RunWithFormat(string(body))
	if err != nil {
		c.JSON(parseErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"format": format.String(),
		"feed":   parsed,
	})
}

// APIFetch downloads the feed at ?url= and returns it normalized. Client
// cache validators are forwarded upstream and a 304 is passed through.
func (h *Handler) APIFetch(c *gin.Context) {
	target := c.Query("url")
	u, err := url.Parse(target)
	if target == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter url must be an absolute http(s) URL"})
		return
	}

	result, err := h.downloader.Download(c.Request.Context(), download.Request{
		URL:          target,
		ETag:         c.GetHeader("If-None-Match"),
		LastModified: c.GetHeader("If-Modified-Since"),
	})
	if err != nil {
		logger.L.Warnw("Upstream fetch failed", "url", target, "error", err)
		resp := gin.H{"error": err.Error()}
		var httpErr *download.HTTPError
		if errors.As(err, &httpErr) {
			resp["upstream_status"] = httpErr.StatusCode
		}
		c.JSON(http.StatusBadGateway, resp)
		return
	}

	if result.ETag != "" {
		c.Header("ETag", result.ETag)
	}
	if result.LastModified != "" {
		c.Header("Last-Modified", result.LastModified)
	}

	if result.NotModified {
		c.Status(http.StatusNotModified)
		return
	}

	parsed, format, err := h.parser.RunWithFormat(result.Content)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Feed-Format", format.String())
	c.Header("X-Feed-Encoding", result.Encoding)

	resp := gin.H{
		"format":   format.String(),
		"encoding": result.Encoding,
		"feed":     parsed,
	}
	if result.RedirectURL != "" {
		resp["redirect_url"] = result.RedirectURL
	}
	c.JSON(http.StatusOK, resp)
}

func parseErrorStatus(err error) int {
	switch {
	case errors.Is(err, parser.ErrMalformedDocument):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func summarize(feedConfig *feed.Config, stored *database.Feed) feedSummary {
	s := feedSummary{
		Name:            feedConfig.Name,
		URL:             feedConfig.URL,
		Enabled:         feedConfig.Settings.Enabled,
		RefreshInterval: feedConfig.Settings.RefreshDuration().String(),
	}
	if stored == nil {
		return s
	}

	s.Title = stored.Title
	s.Format = stored.Format
	s.ItemCount = stored.ItemCount
	s.LastStatus = stored.LastStatus
	s.LastError = stored.LastError
	s.LastFetchedAt = stored.LastFetchedAt
	s.NextFetchAt = stored.NextFetchAt
	return s
}
