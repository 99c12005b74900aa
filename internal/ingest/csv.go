package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

func readCSV(source, path string) ([]model.DataRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(model.ErrNotFound, "file %s", path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(model.ErrParse, "read csv header of %s: %v", path, err)
	}
	for i, h := range headers {
		headers[i] = strings.ReplaceAll(strings.TrimSpace(h), `"`, "")
	}

	var out []model.DataRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrapf(model.ErrParse, "read csv row of %s: %v", path, err)
		}
		fields := make(map[string]interface{}, len(headers))
		for i, header := range headers {
			if i < len(row) {
				fields[header] = parseScalar(row[i])
			}
		}
		out = append(out, model.NewRecord(source, fields))
	}
}

// parseScalar narrows a csv cell to int, float or string.
func parseScalar(s string) interface{} {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
