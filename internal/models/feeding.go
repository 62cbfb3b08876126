package models

import "time"

// FeedingSchedule is a recurring feed definition. FeedDays uses weekday
// codes 0-6 with 0 = Sunday, matching the persisted comma-separated form.
type FeedingSchedule struct {
	ID           int64      `json:"id"`
	Enabled      bool       `json:"enabled"`
	Name         string     `json:"schedule_name"`
	FeedTime     string     `json:"feed_time"` // "HH:MM"
	FeedDays     []int      `json:"feed_days"`
	PortionSize  int        `json:"portion_size"` // 1-3
	LastFeedTime *time.Time `json:"last_feed_time,omitempty"`
}

// FeedingLogEntry records one completed dispense. ScheduleID is nil for
// manual feeds.
type FeedingLogEntry struct {
	ID           int64     `json:"id"`
	ScheduleID   *int64    `json:"schedule_id,omitempty"`
	ScheduleName string    `json:"schedule_name,omitempty"`
	FeedTime     time.Time `json:"feed_time"`
	PortionSize  int       `json:"portion_size"`
}

// FeedResult reports a successful manual feed.
type FeedResult struct {
	PortionSize  int       `json:"portion_size"`
	LastFeedTime time.Time `json:"last_feed_time"`
}
