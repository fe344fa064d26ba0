package dayahead

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"GridCast/internal/domain/models"
	drepo "GridCast/internal/domain/repository"
	xhttp "GridCast/pkg/http"
)

// Client fetches day-ahead forecast and settlement history from a market
// operator REST API. Used to backfill gaps left by the live feed.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

// New creates a day-ahead API client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type apiPrice struct {
	Market       string  `json:"market"`
	Region       string  `json:"region"`
	PriceType    string  `json:"price_type"`
	TS           int64   `json:"ts"`
	Price        float64 `json:"price"`
	ForecastedAt int64   `json:"forecasted_at,omitempty"`
	Horizon      float64 `json:"horizon,omitempty"`
}

type pricesResponse struct {
	Prices []apiPrice `json:"prices"`
}

// FetchPrices fetches a price history window for one market and price type.
func (c *Client) FetchPrices(ctx context.Context, market string, pt drepo.PriceType, start, end time.Time) ([]*models.PriceRecord, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("dayahead client not configured")
	}
	var resp pricesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/v1/prices",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		QueryParams: map[string][]string{
			"market": {market},
			"type":   {string(pt)},
			"from":   {strconv.FormatInt(start.Unix(), 10)},
			"to":     {strconv.FormatInt(end.Unix(), 10)},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch prices %s/%s: %w", market, pt, err)
	}

	out := make([]*models.PriceRecord, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		rec := &models.PriceRecord{
			Market:       p.Market,
			Region:       p.Region,
			PriceType:    string(drepo.NormalizePriceType(p.PriceType)),
			Timestamp:    time.Unix(p.TS, 0).UTC(),
			Price:        p.Price,
			HorizonHours: p.Horizon,
		}
		if p.ForecastedAt > 0 {
			fa := time.Unix(p.ForecastedAt, 0).UTC()
			rec.ForecastedAt = &fa
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchPricesWithRetry retries transient fetch failures with linear backoff.
func (c *Client) FetchPricesWithRetry(ctx context.Context, market string, pt drepo.PriceType, start, end time.Time, attempts int) ([]*models.PriceRecord, error) {
	if attempts <= 1 {
		return c.FetchPrices(ctx, market, pt, start, end)
	}
	var (
		out []*models.PriceRecord
		err error
	)
	for i := 1; i <= attempts; i++ {
		out, err = c.FetchPrices(ctx, market, pt, start, end)
		if err == nil {
			return out, nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, err
}
