package sink

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
)

func writeJSON(records []model.DataRecord, path string, log *logrus.Entry) error {
	encoded, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode records")
	}
	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}

	log.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Info("records written to json file")
	return nil
}

// writeCSV flattens records to the id/timestamp/source/data column shape,
// with the data payload JSON-encoded in its column.
func writeCSV(records []model.DataRecord, path string, log *logrus.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "timestamp", "source", "data"}); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, rec := range records {
		data, err := json.Marshal(rec.Data)
		if err != nil {
			return errors.Wrapf(err, "encode record %s", rec.ID)
		}
		row := []string{rec.ID, rec.Timestamp.Format(time.RFC3339), rec.Source, string(data)}
		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "write record %s", rec.ID)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}

	log.WithFields(logrus.Fields{
		"path":    path,
		"records": len(records),
	}).Info("records written to csv file")
	return nil
}
