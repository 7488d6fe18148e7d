package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gogpu/heatmap"
)

// readPoints parses "id,lat,lng" records. A first line whose latitude does
// not parse is treated as a header.
func readPoints(r io.Reader) ([]heatmap.GeoPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var points []heatmap.GeoPoint
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read points: %w", err)
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want id,lat,lng, got %d fields", line, len(rec))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: longitude: %w", line, err)
		}

		p := heatmap.GeoPoint{Lat: lat, Lng: lng}
		if !p.IsValid() {
			return nil, fmt.Errorf("line %d: point %s out of range", line, p)
		}
		points = append(points, p)
	}
	return points, nil
}
