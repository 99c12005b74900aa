package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
)

// writeDatabase inserts every record into the configured sqlite table,
// creating it on first use. The whole write is one transaction so a partial
// failure leaves no half-written output.
func writeDatabase(ctx context.Context, records []model.DataRecord, format model.OutputFormat, log *logrus.Entry) error {
	if format.ConnectionString == "" || format.Table == "" {
		return errors.Wrap(model.ErrSink, "database output requires connection_string and table")
	}

	db, err := sql.Open("sqlite3", format.ConnectionString)
	if err != nil {
		return errors.Wrapf(err, "open database %s", format.ConnectionString)
	}
	defer db.Close()

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %q (
		id TEXT PRIMARY KEY,
		timestamp DATETIME,
		source TEXT,
		data TEXT
	);`, format.Table)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrapf(err, "create table %s", format.Table)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT OR REPLACE INTO %q (id, timestamp, source, data) VALUES (?, ?, ?, ?)`, format.Table))
	if err != nil {
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, rec := range records {
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return errors.Wrapf(err, "encode record %s", rec.ID)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Timestamp.Format(time.RFC3339), rec.Source, string(data)); err != nil {
			return errors.Wrapf(err, "insert record %s", rec.ID)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}

	log.WithFields(logrus.Fields{
		"table":   format.Table,
		"records": len(records),
	}).Info("records written to database")
	return nil
}
