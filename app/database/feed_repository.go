package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ FeedRepository = (*SQLiteFeedRepository)(nil)

const feedColumns = `id, name, feed_url, title, web_url, canonical_url, hub_url, format, item_count,
	etag, last_modified, last_status, last_error, redirect_url, encoding,
	last_fetched_at, next_fetch_at, created_at, updated_at`

type SQLiteFeedRepository struct {
	db  *DB
	now func() time.Time
}

func NewFeedRepository(db *DB) *SQLiteFeedRepository {
	return &SQLiteFeedRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var feed Feed
	err := row.Scan(
		&feed.ID, &feed.Name, &feed.FeedURL, &feed.Title, &feed.WebURL, &feed.CanonicalURL,
		&feed.HubURL, &feed.Format, &feed.ItemCount,
		&feed.ETag, &feed.LastModified, &feed.LastStatus, &feed.LastError, &feed.RedirectURL, &feed.Encoding,
		&feed.LastFetchedAt, &feed.NextFetchAt, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &feed, nil
}

// GetFeed returns nil, nil when no feed with that name is registered.
func (r *SQLiteFeedRepository) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, feedName)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	return feed, nil
}

func (r *SQLiteFeedRepository) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	feeds := []Feed{}
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

func (r *SQLiteFeedRepository) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

func (r *SQLiteFeedRepository) UpsertFeed(feedName, feedURL string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := r.now()

	changed := false

	var existingURL string
	err = tx.QueryRow(`SELECT feed_url FROM feeds WHERE name = ?`, feedName).Scan(&existingURL)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.Exec(`
			INSERT INTO feeds (id, name, feed_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.NewString(), feedName, feedURL, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert feed: %w", err)
		}

	case err != nil:
		return false, fmt.Errorf("failed to check existing feed: %w", err)

	case existingURL != feedURL:
		// Validators from the old URL mean nothing for the new one.
		_, err = tx.Exec(`
			UPDATE feeds
			SET feed_url = ?, etag = '', last_modified = '', redirect_url = '',
			    next_fetch_at = NULL, updated_at = ?
			WHERE name = ?
		`, feedURL, now, feedName)
		if err != nil {
			return false, fmt.Errorf("failed to update feed URL: %w", err)
		}
		changed = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit feed upsert: %w", err)
	}

	return changed, nil
}

func (r *SQLiteFeedRepository) UpdateFetchSuccess(feedName string, result FetchSuccess) error {
	now := r.now()

	res, err := r.db.Exec(`
		UPDATE feeds
		SET title = ?, web_url = ?, canonical_url = ?, hub_url = ?, format = ?, item_count = ?,
		    etag = ?, last_modified = ?, last_status = ?, last_error = '',
		    redirect_url = ?, encoding = ?,
		    last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, result.Title, result.WebURL, result.CanonicalURL, result.HubURL, result.Format, result.ItemCount,
		result.ETag, result.LastModified, result.Status,
		result.RedirectURL, result.Encoding,
		now, result.NextFetchAt.UTC(), now, feedName)
	if err != nil {
		return fmt.Errorf("failed to update feed after fetch: %w", err)
	}

	return expectOneRow(res, feedName)
}

func (r *SQLiteFeedRepository) UpdateFetchNotModified(feedName string, status int, nextFetch time.Time) error {
	now := r.now()

	res, err := r.db.Exec(`
		UPDATE feeds
		SET last_status = ?, last_error = '', last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, status, now, nextFetch.UTC(), now, feedName)
	if err != nil {
		return fmt.Errorf("failed to update not-modified feed: %w", err)
	}

	return expectOneRow(res, feedName)
}

// UpdateFetchFailure keeps the validators and metadata of the last good fetch.
func (r *SQLiteFeedRepository) UpdateFetchFailure(feedName string, status int, message string, nextFetch time.Time) error {
	now := r.now()

	res, err := r.db.Exec(`
		UPDATE feeds
		SET last_status = ?, last_error = ?, last_fetched_at = ?, next_fetch_at = ?, updated_at = ?
		WHERE name = ?
	`, status, message, now, nextFetch.UTC(), now, feedName)
	if err != nil {
		return fmt.Errorf("failed to record fetch failure: %w", err)
	}

	return expectOneRow(res, feedName)
}

func expectOneRow(res sql.Result, feedName string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed '%s' not found", feedName)
	}
	return nil
}
