package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
	"go-data-processor/internal/store"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// FromAPI fetches a JSON response from a remote endpoint into the record
// store. A bare array maps to one record per element, an object with a
// "data" array likewise, and any other value to a single record.
func FromAPI(ctx context.Context, records *store.RecordStore, source, endpoint string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, errors.Wrapf(err, "build request for %s", endpoint)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrapf(model.ErrRemote, "GET %s: %v", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, errors.Wrapf(model.ErrRemote, "GET %s: status %d", endpoint, resp.StatusCode)
	}

	var raw interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return 0, errors.Wrapf(model.ErrParse, "decode response of %s: %v", endpoint, err)
	}

	parsed := mapResponse(source, raw)
	records.Put(source, parsed)
	logrus.WithFields(logrus.Fields{
		"source":   source,
		"endpoint": endpoint,
		"records":  len(parsed),
	}).Info("loaded records from api")
	return len(parsed), nil
}

func mapResponse(source string, raw interface{}) []model.DataRecord {
	switch data := raw.(type) {
	case []interface{}:
		out := make([]model.DataRecord, 0, len(data))
		for _, item := range data {
			out = append(out, model.NewRecord(source, item))
		}
		return out
	case map[string]interface{}:
		if items, ok := data["data"].([]interface{}); ok {
			out := make([]model.DataRecord, 0, len(items))
			for _, item := range items {
				out = append(out, model.NewRecord(source, item))
			}
			return out
		}
		return []model.DataRecord{model.NewRecord(source, data)}
	default:
		return []model.DataRecord{model.NewRecord(source, raw)}
	}
}
