package collector

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"StockForecast/internal/model"
)

// FinanceGoLoader implements Loader with the finance-go chart iterator.
type FinanceGoLoader struct{}

func NewFinanceGoLoader() *FinanceGoLoader { return &FinanceGoLoader{} }

func (f *FinanceGoLoader) Name() string { return "finance-go" }

func (f *FinanceGoLoader) Load(ctx context.Context, ticker string, start, end time.Time) ([]model.RawRow, error) {
	if end.IsZero() {
		end = time.Now()
	}
	rangeEnd := end.AddDate(0, 0, 1)
	params := &chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&rangeEnd),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var rows []model.RawRow
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, chartBarRow(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("finance-go chart %s: %w", ticker, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("finance-go: no data returned for %s", ticker)
	}
	return tidyRows(rows, start, end), nil
}

// chartBarRow converts a chart bar into a raw row. The iterator decodes Yahoo
// nulls as zero decimals, so a zero price is reported as a missing cell, and
// an all-zero bar loses its volume too.
func chartBarRow(bar *finance.ChartBar) model.RawRow {
	row := model.RawRow{
		Date:     time.Unix(int64(bar.Timestamp), 0).UTC(),
		Open:     priceCell(bar.Open),
		High:     priceCell(bar.High),
		Low:      priceCell(bar.Low),
		Close:    priceCell(bar.Close),
		AdjClose: priceCell(bar.AdjClose),
		Volume:   int64(bar.Volume),
	}
	if row.Open == nil && row.High == nil && row.Low == nil && row.Close == nil {
		row.Volume = nil
	}
	return row
}

func priceCell(d decimal.Decimal) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.InexactFloat64()
}
