package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

type FeedingLogSQLite struct {
	db *sql.DB
}

func NewFeedingLogSQLite(db *sql.DB) *FeedingLogSQLite {
	return &FeedingLogSQLite{db: db}
}

// RecordFeed writes the log row and the schedule timestamp as one unit, so
// a failure leaves neither behind and the cooldown still reflects the last
// successful feed.
func (r *FeedingLogSQLite) RecordFeed(ctx context.Context, scheduleID *int64, portion int, fedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin feed transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := fedAt.Unix()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO feeding_logs (schedule_id, feed_time, portion_size)
		VALUES (?, ?, ?)`,
		scheduleID, ts, portion,
	); err != nil {
		return fmt.Errorf("insert feeding log: %w", err)
	}

	if scheduleID != nil {
		if _, err := tx.ExecContext(ctx, `
			UPDATE feeding_schedules SET last_feed_time=? WHERE id=?`,
			ts, *scheduleID,
		); err != nil {
			return fmt.Errorf("stamp schedule %d: %w", *scheduleID, err)
		}
	}

	return tx.Commit()
}

func (r *FeedingLogSQLite) List(ctx context.Context, limit int) ([]models.FeedingLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.schedule_id, l.feed_time, l.portion_size, COALESCE(s.schedule_name, '')
		FROM feeding_logs l
		LEFT JOIN feeding_schedules s ON l.schedule_id = s.id
		ORDER BY l.feed_time DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.FeedingLogEntry, 0, limit)
	for rows.Next() {
		var (
			e          models.FeedingLogEntry
			scheduleID sql.NullInt64
			ts         int64
		)
		if err := rows.Scan(&e.ID, &scheduleID, &ts, &e.PortionSize, &e.ScheduleName); err != nil {
			return nil, err
		}
		if scheduleID.Valid {
			id := scheduleID.Int64
			e.ScheduleID = &id
		}
		e.FeedTime = time.Unix(ts, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *FeedingLogSQLite) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM feeding_logs WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("feeding log %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
