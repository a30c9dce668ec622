package iwls

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// csvSeriesOrder fixes the column order of exported station CSV files.
var csvSeriesOrder = []string{SeriesWLO, SeriesWLF, SeriesWLP, SeriesSpine}

// WriteCSV exports a station's four series to w, outer-joined on their
// timestamps. Missing samples leave blank cells.
func WriteCSV(w io.Writer, feature StationFeature) error {
	type row struct {
		values map[string]*float64
	}
	rows := make(map[time.Time]*row)

	for _, key := range csvSeriesOrder {
		readings, err := feature.Properties.Series(key)
		if err != nil {
			return err
		}
		for _, r := range readings {
			ts := r.EventDate.UTC()
			rw, ok := rows[ts]
			if !ok {
				rw = &row{values: make(map[string]*float64, len(csvSeriesOrder))}
				rows[ts] = rw
			}
			rw.values[key] = r.Value
		}
	}

	index := make([]time.Time, 0, len(rows))
	for ts := range rows {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"datetime"}, csvSeriesOrder...)); err != nil {
		return err
	}
	for _, ts := range index {
		record := []string{ts.Format(time.RFC3339)}
		for _, key := range csvSeriesOrder {
			v := rows[ts].values[key]
			if v == nil {
				record = append(record, "")
			} else {
				record = append(record, fmt.Sprintf("%.3f", *v))
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStationCSV writes a station's CSV export as <code>.csv under dir and
// returns the file path.
func WriteStationCSV(dir string, feature StationFeature) (string, error) {
	path := filepath.Join(dir, feature.Properties.Metadata.Code+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, feature); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
