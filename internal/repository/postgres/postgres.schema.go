package postgres

import (
	"context"
	"fmt"

	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/database"
	"github.com/PNS-Srivardhan/grow-flow-automata-system/internal/errors"
	"github.com/lib/pq"
	nuts "github.com/vaudience/go-nuts"
)

var tableQueries = []string{
	`CREATE TABLE IF NOT EXISTS crops (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		min_air_temp DOUBLE PRECISION NOT NULL,
		max_air_temp DOUBLE PRECISION NOT NULL,
		min_water_temp DOUBLE PRECISION NOT NULL,
		max_water_temp DOUBLE PRECISION NOT NULL,
		min_humidity DOUBLE PRECISION NOT NULL,
		max_humidity DOUBLE PRECISION NOT NULL,
		min_ph DOUBLE PRECISION NOT NULL,
		max_ph DOUBLE PRECISION NOT NULL,
		min_tds DOUBLE PRECISION NOT NULL,
		max_tds DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		device_type TEXT NOT NULL,
		is_on BOOLEAN NOT NULL DEFAULT false,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sensor_readings (
		id TEXT PRIMARY KEY,
		air_temp DOUBLE PRECISION NOT NULL,
		water_temp DOUBLE PRECISION NOT NULL,
		humidity DOUBLE PRECISION NOT NULL,
		ph DOUBLE PRECISION NOT NULL,
		tds DOUBLE PRECISION NOT NULL,
		status JSONB NOT NULL,
		crop_id TEXT REFERENCES crops(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sensor_readings_created_at
		ON sensor_readings(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS alerts (
		id TEXT PRIMARY KEY,
		message TEXT NOT NULL,
		sensor_type TEXT NOT NULL,
		type TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alerts_unread
		ON alerts(is_read, created_at DESC)`,
}

// notifyTriggers lists the row changes pushed to realtime subscribers.
var notifyTriggers = []struct {
	table string
	op    string
}{
	{"sensor_readings", "INSERT"},
	{"alerts", "INSERT"},
	{"devices", "UPDATE"},
}

// InitializeSchema creates the tables and the NOTIFY triggers feeding channel.
func InitializeSchema(ctx context.Context, db database.DB, channel string) error {
	queries := append([]string{}, tableQueries...)
	queries = append(queries, notifyQueries(channel)...)

	for _, query := range queries {
		if _, err := db.GetDB().ExecContext(ctx, query); err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}
	nuts.L.Infof("[Schema] Initialized, notifications on channel %s", channel)
	return nil
}

func notifyQueries(channel string) []string {
	queries := []string{
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION hydro_notify_change() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify(%s, json_build_object(
				'table', TG_TABLE_NAME,
				'type', TG_OP,
				'record', row_to_json(NEW)
			)::text);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`, pq.QuoteLiteral(channel)),
	}
	for _, t := range notifyTriggers {
		name := pq.QuoteIdentifier(t.table + "_notify")
		queries = append(queries,
			fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON %s`, name, t.table),
			fmt.Sprintf(`CREATE TRIGGER %s AFTER %s ON %s FOR EACH ROW EXECUTE FUNCTION hydro_notify_change()`, name, t.op, t.table),
		)
	}
	return queries
}
