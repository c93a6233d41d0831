package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

var requiredColumns = []string{"date", "campaign_name", "spend", "revenue"}

// Day-first layouts, tried in order. ISO dates are unambiguous and go first.
var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/2006 15:04",
	"2-1-2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006 15:04:05",
	"2/1/06",
	"2-1-06",
}

// readRows parses the CSV at path. limit > 0 caps the number of data rows.
func readRows(path string, limit int) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrDataNotFound)
		}
		return nil, fmt.Errorf("open data: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty data file", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}

	var rows []Row
	line := 1
	for limit <= 0 || len(rows) < limit {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		row, err := parseRow(record, cols)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(record []string, cols map[string]int) (Row, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return Row{}, err
	}
	row := Row{
		Date:            date,
		CampaignName:    field("campaign_name"),
		CreativeMessage: field("creative_message"),
	}

	numbers := []struct {
		name string
		dst  *float64
	}{
		{"spend", &row.Spend},
		{"revenue", &row.Revenue},
		{"clicks", &row.Clicks},
		{"purchases", &row.Purchases},
	}
	for _, n := range numbers {
		v, _, err := parseNumber(field(n.name))
		if err != nil {
			return Row{}, fmt.Errorf("%s: %w", n.name, err)
		}
		*n.dst = v
	}

	ctr, ok, err := parseNumber(field("ctr"))
	if err != nil {
		return Row{}, fmt.Errorf("ctr: %w", err)
	}
	row.CTR, row.HasCTR = ctr, ok

	if row.Spend > 0 {
		row.ROAS = row.Revenue / row.Spend
	}
	return row, nil
}

// parseNumber treats blank and NaN cells as missing (0, false).
func parseNumber(s string) (float64, bool, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "na", "n/a":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
