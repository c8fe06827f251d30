package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TrendSentinel/internal/model"
)

// AlphaVantageFetcher implements Fetcher using the Alpha Vantage time series API.
type AlphaVantageFetcher struct {
	BaseURL  string
	APIKey   string
	Function string // TIME_SERIES_INTRADAY or TIME_SERIES_DAILY
	Interval string // intraday only, e.g. "5min"
	Client   *http.Client
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, function, interval, proxyURL string) *AlphaVantageFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = "https://www.alphavantage.co"
	}
	if function == "" {
		function = "TIME_SERIES_INTRADAY"
	}
	if interval == "" {
		interval = "5min"
	}
	return &AlphaVantageFetcher{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		APIKey:   apiKey,
		Function: function,
		Interval: interval,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

// avBar holds the price fields of one time series entry.
type avBar struct {
	Open  string `json:"1. open"`
	Close string `json:"4. close"`
}

func (f *AlphaVantageFetcher) FetchObservations(ctx context.Context, symbol string) ([]model.RawObservation, error) {
	q := url.Values{}
	q.Set("function", f.Function)
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)
	if f.Function == "TIME_SERIES_INTRADAY" {
		q.Set("interval", f.Interval)
	}
	body, err := f.get(ctx, f.BaseURL+"/query?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return DecodeTimeSeries(body)
}

// FetchQuote reads the latest price via function=GLOBAL_QUOTE.
func (f *AlphaVantageFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", f.APIKey)
	body, err := f.get(ctx, f.BaseURL+"/query?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return DecodeQuote(body, symbol)
}

func (f *AlphaVantageFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("alphavantage read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// DecodeQuote extracts the "Global Quote" object. An empty object means the
// symbol is unknown.
func DecodeQuote(body []byte, symbol string) (*model.Quote, error) {
	var doc struct {
		Quote struct {
			Symbol string `json:"01. symbol"`
			Price  string `json:"05. price"`
		} `json:"Global Quote"`
		ErrorMessage string `json:"Error Message"`
		Note         string `json:"Note"`
		Information  string `json:"Information"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("alphavantage decode quote: %w", err)
	}
	for _, msg := range []string{doc.ErrorMessage, doc.Note, doc.Information} {
		if msg != "" {
			return nil, fmt.Errorf("alphavantage api error: %s", msg)
		}
	}
	if doc.Quote.Price == "" {
		return nil, fmt.Errorf("alphavantage: no quote for %s", symbol)
	}
	price, err := strconv.ParseFloat(doc.Quote.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote price %q: %w", doc.Quote.Price, err)
	}
	quote := &model.Quote{Symbol: doc.Quote.Symbol, Price: price}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	return quote, nil
}

// DecodeTimeSeries extracts (timestamp, price) rows from an Alpha Vantage
// payload. The series key varies by function ("Time Series (5min)",
// "Time Series (Daily)", ...). Close is preferred, open is the fallback.
func DecodeTimeSeries(body []byte) ([]model.RawObservation, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}
	for _, key := range []string{"Error Message", "Note", "Information"} {
		if raw, ok := doc[key]; ok {
			var msg string
			_ = json.Unmarshal(raw, &msg)
			return nil, fmt.Errorf("alphavantage api error: %s", msg)
		}
	}

	var series map[string]avBar
	for key, raw := range doc {
		if !strings.HasPrefix(key, "Time Series") {
			continue
		}
		if err := json.Unmarshal(raw, &series); err != nil {
			return nil, fmt.Errorf("alphavantage decode %q: %w", key, err)
		}
		break
	}
	if series == nil {
		return nil, fmt.Errorf("alphavantage: no time series in payload")
	}

	rows := make([]model.RawObservation, 0, len(series))
	for ts, bar := range series {
		price := bar.Close
		if price == "" {
			price = bar.Open
		}
		rows = append(rows, model.RawObservation{Timestamp: ts, Price: price})
	}
	return rows, nil
}
