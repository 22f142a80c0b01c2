package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/httputil"
	"github.com/roshimastsensei/log-momentum/internal/models"
)

const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultUserAgent    = "Mozilla/5.0 (compatible; LMR-Bot/1.0; +https://log-momentum.vercel.app)"

	quoteCurrency = "usd"
	maxRawBytes   = 64 << 10
)

var ErrNotFound = errors.New("not found")

type CoinGeckoOptions struct {
	BaseURL   string
	APIKey    string
	KeyHeader string
	UserAgent string
	Timeout   time.Duration
	Retry     httputil.RetryConfig
	Logger    logrus.FieldLogger
}

type CoinGeckoClient struct {
	http *resty.Client
	log  logrus.FieldLogger
}

func NewCoinGeckoClient(opts CoinGeckoOptions) *CoinGeckoClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCoinGeckoURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
		}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	log := opts.Logger.WithField("component", "coingecko")

	headers := map[string]string{"Accept": "application/json"}
	if opts.APIKey != "" {
		header := opts.KeyHeader
		if header == "" {
			header = "x-cg-demo-api-key"
		}
		headers[header] = opts.APIKey
	}

	return &CoinGeckoClient{
		http: httputil.NewClient(httputil.ClientOptions{
			BaseURL:   strings.TrimSuffix(opts.BaseURL, "/"),
			Timeout:   opts.Timeout,
			UserAgent: opts.UserAgent,
			Headers:   headers,
			Retry:     opts.Retry,
			Logger:    log,
		}),
		log: log,
	}
}

// CurrentPrice reads {id}.usd from /simple/price. Failures never escape:
// they come back as a failed sample carrying the error and raw body.
func (c *CoinGeckoClient) CurrentPrice(ctx context.Context, id string) models.Sample {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", id).
		SetQueryParam("vs_currencies", quoteCurrency).
		Get("/simple/price")
	body, err := checkResponse(resp, err)
	if err != nil {
		c.log.WithError(err).WithField("id", id).Debug("current price fetch failed")
		return models.FailedSample(fmt.Errorf("simple price: %w", err), rawJSON(body))
	}

	var data map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return models.FailedSample(fmt.Errorf("decode simple price: %w", err), rawJSON(body))
	}
	entry, ok := data[id]
	if !ok || entry.USD == nil {
		return models.FailedSample(fmt.Errorf("no %s price for %q", quoteCurrency, id), rawJSON(body))
	}
	return models.OKSample(*entry.USD, rawJSON(body))
}

// HistoricalPrice reads market_data.current_price.usd from
// /coins/{id}/history for a DD-MM-YYYY date.
func (c *CoinGeckoClient) HistoricalPrice(ctx context.Context, id, date string) models.Sample {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("date", date).
		SetQueryParam("localization", "false").
		Get("/coins/{id}/history")
	body, err := checkResponse(resp, err)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"id": id, "date": date}).Debug("historical price fetch failed")
		return models.FailedSample(fmt.Errorf("history %s: %w", date, err), rawJSON(body))
	}

	var data struct {
		MarketData *struct {
			CurrentPrice map[string]*float64 `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return models.FailedSample(fmt.Errorf("decode history %s: %w", date, err), rawJSON(body))
	}
	if data.MarketData == nil || data.MarketData.CurrentPrice[quoteCurrency] == nil {
		return models.FailedSample(fmt.Errorf("no %s market data for %q on %s", quoteCurrency, id, date), rawJSON(body))
	}
	return models.OKSample(*data.MarketData.CurrentPrice[quoteCurrency], rawJSON(body))
}

// ResolveContract maps a token contract address on a platform (e.g.
// "ethereum") to its CoinGecko coin id. Unknown contracts yield ErrNotFound.
func (c *CoinGeckoClient) ResolveContract(ctx context.Context, platform, address string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"platform": platform, "address": strings.ToLower(address)}).
		Get("/coins/{platform}/contract/{address}")
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("contract %s on %s: %w", address, platform, ErrNotFound)
	}
	body, err := checkResponse(resp, err)
	if err != nil {
		return "", fmt.Errorf("resolve contract %s: %w", address, err)
	}

	var data struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("decode contract %s: %w", address, err)
	}
	if data.ID == "" {
		return "", fmt.Errorf("contract %s on %s: %w", address, platform, ErrNotFound)
	}
	return data.ID, nil
}

func checkResponse(resp *resty.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	body := resp.Body()
	if !resp.IsSuccess() {
		return body, fmt.Errorf("coingecko returned status %d", resp.StatusCode())
	}
	return body, nil
}

// rawJSON keeps a provider body for diagnostics only if it is valid JSON
// and not oversized, so it can be embedded verbatim in a response.
func rawJSON(body []byte) json.RawMessage {
	if len(body) == 0 || len(body) > maxRawBytes || !json.Valid(body) {
		return nil
	}
	return json.RawMessage(body)
}
