package repository

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRecordFeed_Scheduled_CommitsBothWrites(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewFeedingLogSQLite(db)

	fedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	scheduleID := int64(3)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feeding_logs").
		WithArgs(scheduleID, fedAt.Unix(), 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE feeding_schedules SET last_feed_time").
		WithArgs(fedAt.Unix(), scheduleID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.RecordFeed(ctx(t), &scheduleID, 2, fedAt); err != nil {
		t.Fatalf("RecordFeed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestRecordFeed_Manual_SkipsScheduleStamp(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewFeedingLogSQLite(db)

	fedAt := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feeding_logs").
		WithArgs(nil, fedAt.Unix(), 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.RecordFeed(ctx(t), nil, 1, fedAt); err != nil {
		t.Fatalf("RecordFeed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestRecordFeed_StampFailure_RollsBack(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewFeedingLogSQLite(db)

	fedAt := time.Now()
	scheduleID := int64(5)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO feeding_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE feeding_schedules SET last_feed_time").
		WillReturnError(errors.New("locked"))
	mock.ExpectRollback()

	err := repo.RecordFeed(ctx(t), &scheduleID, 1, fedAt)
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected stamp error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestFeedingLogList_JoinsScheduleName(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewFeedingLogSQLite(db)

	fedAt := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "schedule_id", "feed_time", "portion_size", "schedule_name"}).
		AddRow(2, 3, fedAt.Unix(), 2, "morning").
		AddRow(1, nil, fedAt.Add(-time.Hour).Unix(), 1, "")

	mock.ExpectQuery("LEFT JOIN feeding_schedules").
		WithArgs(10).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 entries, got %d", len(got))
	}
	if got[0].ScheduleID == nil || *got[0].ScheduleID != 3 || got[0].ScheduleName != "morning" {
		t.Fatalf("scheduled entry mismatch: %+v", got[0])
	}
	if got[1].ScheduleID != nil || got[1].ScheduleName != "" {
		t.Fatalf("manual entry mismatch: %+v", got[1])
	}
	if !got[0].FeedTime.Equal(fedAt) {
		t.Fatalf("feed_time mismatch: %v", got[0].FeedTime)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
