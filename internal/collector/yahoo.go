package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"StockForecast/internal/model"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooLoader implements Loader using the Yahoo Finance public chart API.
type YahooLoader struct {
	Client    *resty.Client
	BaseURL   string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooLoader creates a new Yahoo Finance loader. baseURL may be empty.
func NewYahooLoader(baseURL, proxyURL string) *YahooLoader {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	client := resty.New().
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &YahooLoader{
		Client:  client,
		BaseURL: baseURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (f *YahooLoader) Name() string { return "yahoo" }

func (f *YahooLoader) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
// Cells stay untyped so nulls reach the cleaning stage as missing values.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func cell(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}

// Load fetches daily bars in [start, end]. A zero end means today.
func (f *YahooLoader) Load(ctx context.Context, ticker string, start, end time.Time) ([]model.RawRow, error) {
	if end.IsZero() {
		end = time.Now()
	}
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1":              strconv.FormatInt(start.Unix(), 10),
			"period2":              strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10),
			"interval":             "1d",
			"events":               "history",
			"includeAdjustedClose": "true",
		}).
		Get(fmt.Sprintf("%s/v8/finance/chart/%s", f.BaseURL, url.PathEscape(f.yahooSymbol(ticker))))
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), string(resp.Body()))
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", ticker)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no quote block for %s", ticker)
	}
	quote := result.Indicators.Quote[0]
	var adj []interface{}
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	rows := make([]model.RawRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Exchange-local calendar date.
		date := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()
		rows = append(rows, model.RawRow{
			Date:     date,
			Open:     cell(quote.Open, i),
			High:     cell(quote.High, i),
			Low:      cell(quote.Low, i),
			Close:    cell(quote.Close, i),
			AdjClose: cell(adj, i),
			Volume:   cell(quote.Volume, i),
		})
	}
	return tidyRows(rows, start, end), nil
}
