package collector

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

// CSVLoader reads <dir>/<TICKER>.csv files with a header row.
type CSVLoader struct {
	dataDir string
}

// NewCSVLoader creates a loader rooted at dataDir.
func NewCSVLoader(dataDir string) *CSVLoader {
	return &CSVLoader{dataDir: dataDir}
}

func (l *CSVLoader) Name() string { return "csv" }

func (l *CSVLoader) Load(_ context.Context, ticker string, start, end time.Time) ([]model.RawRow, error) {
	filePath := filepath.Join(l.dataDir, ticker+".csv")
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return tidyRows(rows, start, end), nil
}

// ReadCSV parses a daily price table. Cells are kept as text; the date column
// is parsed when possible.
func ReadCSV(r io.Reader) ([]model.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file has no data rows")
	}

	colIndex := parseHeader(records[0])
	if _, ok := colIndex[cleaning.ColDate]; !ok {
		return nil, fmt.Errorf("CSV header has no date column")
	}

	rows := make([]model.RawRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		get := func(c cleaning.Column) interface{} {
			idx, ok := colIndex[c]
			if !ok || idx >= len(rec) {
				return nil
			}
			return rec[idx]
		}
		var date interface{} = get(cleaning.ColDate)
		if t, err := cleaning.ParseDate(date); err == nil {
			date = t
		}
		rows = append(rows, model.RawRow{
			Date:     date,
			Open:     get(cleaning.ColOpen),
			High:     get(cleaning.ColHigh),
			Low:      get(cleaning.ColLow),
			Close:    get(cleaning.ColClose),
			AdjClose: get(cleaning.ColAdjClose),
			Volume:   get(cleaning.ColVolume),
		})
	}
	return rows, nil
}

// parseHeader maps header aliases to column indices.
func parseHeader(header []string) map[cleaning.Column]int {
	colIndex := make(map[cleaning.Column]int)
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "date", "timestamp", "ds":
			colIndex[cleaning.ColDate] = i
		case "open":
			colIndex[cleaning.ColOpen] = i
		case "high":
			colIndex[cleaning.ColHigh] = i
		case "low":
			colIndex[cleaning.ColLow] = i
		case "close", "y":
			colIndex[cleaning.ColClose] = i
		case "adj close", "adj_close", "adjclose":
			colIndex[cleaning.ColAdjClose] = i
		case "volume":
			colIndex[cleaning.ColVolume] = i
		}
	}
	return colIndex
}

// WriteCSV writes cleaned bars with the canonical header. Missing cells are empty.
func WriteCSV(w io.Writer, bars []model.Bar) error {
	cw := csv.NewWriter(w)
	header := []string{string(cleaning.ColDate)}
	for _, c := range cleaning.NumericColumns {
		header = append(header, string(c))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Date.Format(cleaning.DateLayout),
			formatFloat(b.Open.Valid, b.Open.Float64),
			formatFloat(b.High.Valid, b.High.Float64),
			formatFloat(b.Low.Valid, b.Low.Float64),
			formatFloat(b.Close.Valid, b.Close.Float64),
			formatFloat(b.AdjClose.Valid, b.AdjClose.Float64),
			"",
		}
		if b.Volume.Valid {
			rec[6] = strconv.FormatInt(b.Volume.Int64, 10)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(valid bool, v float64) string {
	if !valid {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
