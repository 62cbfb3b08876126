package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

type ScheduleSQLite struct {
	db *sql.DB
}

func NewScheduleSQLite(db *sql.DB) *ScheduleSQLite {
	return &ScheduleSQLite{db: db}
}

const selectScheduleCols = `
	SELECT id, enabled, schedule_name, feed_time, feed_days, portion_size, last_feed_time
	FROM feeding_schedules`

// marshalFeedDays converts weekday codes to the persisted "1,3,5" form.
func marshalFeedDays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func unmarshalFeedDays(s string) []int {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if d, err := strconv.Atoi(part); err == nil {
			days = append(days, d)
		}
	}
	return days
}

func (r *ScheduleSQLite) Create(ctx context.Context, s models.FeedingSchedule) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feeding_schedules (enabled, schedule_name, feed_time, feed_days, portion_size)
		VALUES (?, ?, ?, ?, ?)`,
		s.Enabled, s.Name, s.FeedTime, marshalFeedDays(s.FeedDays), s.PortionSize,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ScheduleSQLite) Update(ctx context.Context, s models.FeedingSchedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE feeding_schedules
		SET enabled=?, schedule_name=?, feed_time=?, feed_days=?, portion_size=?
		WHERE id=?`,
		s.Enabled, s.Name, s.FeedTime, marshalFeedDays(s.FeedDays), s.PortionSize, s.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, s.ID)
}

func (r *ScheduleSQLite) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE feeding_schedules SET enabled=? WHERE id=?`, enabled, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *ScheduleSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeding_schedules WHERE id=?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *ScheduleSQLite) List(ctx context.Context) ([]models.FeedingSchedule, error) {
	rows, err := r.db.QueryContext(ctx, selectScheduleCols+` ORDER BY feed_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// Due matches on exact feed_time and membership of the weekday code in the
// comma-separated feed_days column. Codes are single digits 0-6, so a LIKE
// containment test is exact.
func (r *ScheduleSQLite) Due(ctx context.Context, feedTime string, weekday int) ([]models.FeedingSchedule, error) {
	rows, err := r.db.QueryContext(ctx,
		selectScheduleCols+` WHERE enabled=1 AND feed_time=? AND feed_days LIKE ?`,
		feedTime, fmt.Sprintf("%%%d%%", weekday),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func scanSchedules(rows *sql.Rows) ([]models.FeedingSchedule, error) {
	out := make([]models.FeedingSchedule, 0, 8)
	for rows.Next() {
		var (
			s        models.FeedingSchedule
			days     string
			lastFeed sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Enabled, &s.Name, &s.FeedTime, &days, &s.PortionSize, &lastFeed); err != nil {
			return nil, err
		}
		s.FeedDays = unmarshalFeedDays(days)
		if lastFeed.Valid {
			t := time.Unix(lastFeed.Int64, 0).UTC()
			s.LastFeedTime = &t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("schedule %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
