// Package sink routes a job's final record set to its configured output
// destination: json file, csv file, remote endpoint or sqlite table.
// Declared-but-unsupported formats (parquet) are recognized and rejected
// cleanly instead of crashing.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
)

const (
	defaultJSONPath = "output.json"
	defaultCSVPath  = "output.csv"
)

// Router dispatches on the output format's type tag.
type Router struct {
	client *http.Client
	log    *logrus.Entry
}

func NewRouter() *Router {
	return &Router{
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logrus.WithField("component", "sink"),
	}
}

// Emit writes the record set to the destination the format names.
func (r *Router) Emit(ctx context.Context, records []model.DataRecord, format model.OutputFormat) error {
	switch format.Type {
	case model.FormatJSON:
		return writeJSON(records, pathOrDefault(format.Path, defaultJSONPath), r.log)
	case model.FormatCSV:
		return writeCSV(records, pathOrDefault(format.Path, defaultCSVPath), r.log)
	case model.FormatAPI:
		return r.postAPI(ctx, records, format)
	case model.FormatDatabase:
		return writeDatabase(ctx, records, format, r.log)
	case model.FormatParquet:
		return errors.Wrap(model.ErrSink, "parquet output is not supported")
	default:
		return errors.Wrapf(model.ErrSink, "unsupported output format %q", format.Type)
	}
}

func pathOrDefault(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

// postAPI sends the records as a JSON array to the configured endpoint with
// the caller-supplied headers.
func (r *Router) postAPI(ctx context.Context, records []model.DataRecord, format model.OutputFormat) error {
	body, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "encode records")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, format.Endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "build request for %s", format.Endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range format.Headers {
		req.Header.Set(key, value)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrapf(model.ErrRemote, "POST %s: %v", format.Endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(model.ErrRemote, "POST %s: status %d", format.Endpoint, resp.StatusCode)
	}

	r.log.WithFields(logrus.Fields{
		"endpoint": format.Endpoint,
		"records":  len(records),
	}).Info("records sent to endpoint")
	return nil
}
