package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"
)

// date layouts tried in order when no explicit format is given
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
}

// LoadCSV reads a price CSV into a Table. The file needs a header row with a
// date column (dateColumn, default "date") and one numeric column per asset.
// Rows are sorted by date before validation; duplicate dates fail.
func LoadCSV(path, dateColumn, dateFormat string) (*Table, error) {
	if dateColumn == "" {
		dateColumn = "date"
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header and at least one data row", path)
	}

	header := records[0]
	dateIdx := -1
	for i, name := range header {
		if name == dateColumn {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("%s: date column %q not found", path, dateColumn)
	}

	columns := make([]string, 0, len(header)-1)
	valueIdx := make([]int, 0, len(header)-1)
	for i, name := range header {
		if i == dateIdx {
			continue
		}
		columns = append(columns, name)
		valueIdx = append(valueIdx, i)
	}

	type row struct {
		date   time.Time
		values []float64
	}
	rows := make([]row, 0, len(records)-1)
	for lineNo, record := range records[1:] {
		date, err := parseDate(record[dateIdx], dateFormat)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNo+2, err)
		}
		values := make([]float64, len(valueIdx))
		for j, idx := range valueIdx {
			v, err := strconv.ParseFloat(record[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: column %q is not numeric: %w", path, lineNo+2, columns[j], err)
			}
			values[j] = v
		}
		rows = append(rows, row{date: date, values: values})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	dates := make([]time.Time, len(rows))
	values := make([][]float64, len(rows))
	for i, r := range rows {
		dates[i] = r.date
		values[i] = r.values
	}

	table, err := NewTable(dates, columns, values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

func parseDate(s, format string) (time.Time, error) {
	if format != "" {
		return time.Parse(format, s)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
