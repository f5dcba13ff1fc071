package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lysyi3m/syndic/app/database"
	"github.com/lysyi3m/syndic/app/feed"
	"github.com/lysyi3m/syndic/app/logger"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	defaultQueueSize   = 300
	defaultTaskTimeout = 5 * time.Minute
)

type SchedulerOptions struct {
	Interval    time.Duration
	WorkerCount int
	QueueSize   int
	TaskTimeout time.Duration
}

type Scheduler struct {
	feedRepo    database.FeedRepository
	configCache *feed.ConfigCache
	downloader  Downloader
	parser      FeedParser
	interval    time.Duration
	workerCount int
	taskTimeout time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	downloader Downloader, parser FeedParser, opts SchedulerOptions) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.WorkerCount < 1 {
		opts.WorkerCount = 1
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = defaultTaskTimeout
	}

	return &Scheduler{
		feedRepo:    feedRepo,
		configCache: configCache,
		downloader:  downloader,
		parser:      parser,
		interval:    opts.Interval,
		workerCount: opts.WorkerCount,
		taskTimeout: opts.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, opts.QueueSize),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) RefreshFeed(feedConfig *feed.Config) (TaskInterface, error) {
	task := s.newProcessFeedTask(feedConfig)
	if err := s.EnqueueTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Scheduler) newProcessFeedTask(feedConfig *feed.Config) *ProcessFeedTask {
	return NewProcessFeedTask(feedConfig.Name, feedConfig, s.downloader, s.parser, s.feedRepo)
}

// enqueueStartupTasks registers every subscription inline, then queues a
// first fetch for the enabled ones.
func (s *Scheduler) enqueueStartupTasks() {
	feedConfigs := s.configCache.GetConfigs()
	if len(feedConfigs) == 0 {
		logger.L.Debug("No feed configurations found")
		return
	}

	logger.L.Debugw("Processing feed configurations", "count", len(feedConfigs))

	for _, feedConfig := range feedConfigs {
		syncTask := NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.feedRepo)
		syncTask.Start()
		if err := syncTask.Execute(s.ctx); err != nil {
			logger.L.Errorw("Failed to register feed", "feed", feedConfig.Name, "error", err)
		}
	}

	for _, feedConfig := range feedConfigs {
		if !feedConfig.Settings.Enabled {
			logger.L.Debugw("Feed disabled, skipping ProcessFeedTask", "feed", feedConfig.Name)
			continue
		}

		if err := s.EnqueueTask(s.newProcessFeedTask(feedConfig)); err != nil {
			logger.L.Warnw("Failed to enqueue ProcessFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		logger.L.Debug("No enabled feed configurations found")
		return
	}

	logger.L.Debugw("Processing enabled feed configurations for task scheduling", "count", len(feedConfigs))

	now := time.Now().UTC()
	for _, feedConfig := range feedConfigs {
		stored, err := s.feedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			logger.L.Warnw("Failed to get feed from database, skipping", "feed", feedConfig.Name, "error", err)
			continue
		}
		if stored == nil {
			logger.L.Warnw("Feed not found in database, registering", "feed", feedConfig.Name)
			if err := s.EnqueueTask(NewSyncFeedConfigTask(feedConfig.Name, feedConfig, s.feedRepo)); err != nil {
				logger.L.Warnw("Failed to enqueue SyncFeedConfigTask", "feed", feedConfig.Name, "error", err)
			}
			continue
		}

		if !isDue(stored, now) {
			logger.L.Debugw("Feed not due for refresh yet", "feed", feedConfig.Name, "next_fetch_at", stored.NextFetchAt)
			continue
		}

		if err := s.EnqueueTask(s.newProcessFeedTask(feedConfig)); err != nil {
			logger.L.Warnw("Failed to enqueue ProcessFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

func isDue(stored *database.Feed, now time.Time) bool {
	return stored.NextFetchAt == nil || !stored.NextFetchAt.After(now)
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)
		case <-s.ctx.Done():
			return
		}
	}
}

// executeTask runs task once. Failures are logged and not retried.
func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		logger.L.Errorw("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"id", task.GetID(),
			"feed", task.GetFeedName(),
			"duration", task.GetDuration(),
			"error", err)
	}
}
