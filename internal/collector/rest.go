package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"StockForecast/internal/model"
)

// RESTLoader implements Loader against a self-hosted daily bar API.
type RESTLoader struct {
	BaseURL string
	APIKey  string
	Client  *resty.Client
}

// NewRESTLoader creates a new loader with optional proxy support.
func NewRESTLoader(baseURL, apiKey, proxyURL string) *RESTLoader {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return &RESTLoader{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  client,
	}
}

func (f *RESTLoader) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar API. Null fields stay nil.
type restBar struct {
	Timestamp int64    `json:"timestamp"`
	Date      string   `json:"date"`
	Open      *float64 `json:"open"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	AdjClose  *float64 `json:"adj_close"`
	Volume    *float64 `json:"volume"`
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func (f *RESTLoader) Load(ctx context.Context, ticker string, start, end time.Time) ([]model.RawRow, error) {
	if end.IsZero() {
		end = time.Now()
	}
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": ticker,
			"start":  start.Format("2006-01-02"),
			"end":    end.Format("2006-01-02"),
		}).
		Get(f.BaseURL + "/api/v1/bars/daily")
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode(), string(resp.Body()))
	}

	var bars []restBar
	if err := json.Unmarshal(resp.Body(), &bars); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	rows := make([]model.RawRow, len(bars))
	for i, b := range bars {
		var date interface{} = b.Date
		if b.Date == "" {
			date = time.Unix(b.Timestamp, 0).UTC()
		}
		rows[i] = model.RawRow{
			Date:     date,
			Open:     optional(b.Open),
			High:     optional(b.High),
			Low:      optional(b.Low),
			Close:    optional(b.Close),
			AdjClose: optional(b.AdjClose),
			Volume:   optional(b.Volume),
		}
	}
	return tidyRows(rows, start, end), nil
}
