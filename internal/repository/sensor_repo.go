package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/models"
)

type SensorSQLite struct {
	db *sql.DB
}

func NewSensorSQLite(db *sql.DB) *SensorSQLite {
	return &SensorSQLite{db: db}
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

func (r *SensorSQLite) Insert(ctx context.Context, reading models.SensorReading) error {
	ts := reading.CapturedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sensor_data (timestamp, air_temp, humidity, water_temp)
		VALUES (?, ?, ?, ?)`,
		ts.UTC().Format(sqliteTimeLayout),
		nullable(reading.AirTempC),
		nullable(reading.Humidity),
		nullable(reading.WaterTempC),
	)
	return err
}

func (r *SensorSQLite) Range(ctx context.Context, from, to time.Time) ([]models.SensorReading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, air_temp, humidity, water_temp
		FROM sensor_data
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp`,
		from.UTC().Format(sqliteTimeLayout),
		to.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SensorReading, 0, 64)
	for rows.Next() {
		var (
			reading models.SensorReading
			ts      string
			air     sql.NullFloat64
			hum     sql.NullFloat64
			water   sql.NullFloat64
		)
		if err := rows.Scan(&ts, &air, &hum, &water); err != nil {
			return nil, err
		}
		if t, err := time.Parse(sqliteTimeLayout, ts); err == nil {
			reading.CapturedAt = t.UTC()
		}
		reading.AirTempC = fromNull(air)
		reading.Humidity = fromNull(hum)
		reading.WaterTempC = fromNull(water)
		out = append(out, reading)
	}
	return out, rows.Err()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
