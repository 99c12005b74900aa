package ingest

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
)

func readJSONLines(source, path string) ([]model.DataRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(model.ErrNotFound, "file %s", path)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	var out []model.DataRecord
	malformed := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var data interface{}
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			malformed++
			continue
		}
		out = append(out, model.NewRecord(source, data))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(model.ErrParse, "scan %s: %v", path, err)
	}

	if malformed > 0 {
		logrus.WithFields(logrus.Fields{
			"path":    path,
			"skipped": malformed,
		}).Warn("skipped malformed json lines")
	}
	if len(out) == 0 && malformed > 0 {
		return nil, errors.Wrapf(model.ErrParse, "no valid json lines in %s", path)
	}
	return out, nil
}
