package main

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// TimelineCSV renders a timeline as CSV with a header row
func TimelineCSV(points []TimelinePoint) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"year", "value", "kind"}); err != nil {
		return nil, err
	}
	for _, p := range points {
		record := []string{
			strconv.Itoa(p.Year),
			strconv.FormatInt(p.Value, 10),
			string(p.Kind),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
