// Package ggdeals wraps the GG.deals prices API.
package ggdeals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
)

const (
	defaultBaseURL = "https://api.gg.deals/v1/prices/by-steam-app-id/"

	// MaxIDsPerRequest is the API limit on ids per prices request.
	MaxIDsPerRequest = 100

	defaultTimeout = 30 * time.Second
)

// Client calls the GG.deals prices API for one or more Steam App IDs.
type Client struct {
	apiKey     string
	region     string
	baseURL    string
	logger     *logrus.Logger
	httpClient *http.Client
}

// NewClient creates a GG.deals API client for the given key and region.
func NewClient(apiKey, region string, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		region:     region,
		baseURL:    defaultBaseURL,
		logger:     logger,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// priceInfo mirrors the "prices" object of the API response. Prices are
// decimal strings; null means the channel has no current offer.
type priceInfo struct {
	CurrentRetail      *decimal.Decimal `json:"currentRetail"`
	CurrentKeyshops    *decimal.Decimal `json:"currentKeyshops"`
	HistoricalRetail   *decimal.Decimal `json:"historicalRetail"`
	HistoricalKeyshops *decimal.Decimal `json:"historicalKeyshops"`
	Currency           string           `json:"currency"`
}

type gameData struct {
	Title  string    `json:"title"`
	URL    string    `json:"url"`
	Prices priceInfo `json:"prices"`
}

type pricesResponse struct {
	Success bool                 `json:"success"`
	Data    map[string]*gameData `json:"data"`
}

// FetchPrices fetches current prices for up to MaxIDsPerRequest app ids in
// one request. App ids unknown to GG.deals are simply absent from the
// result; callers decide whether that is an error.
func (c *Client) FetchPrices(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
	if len(appIDs) == 0 {
		return map[string]*models.GameQuote{}, nil
	}
	if len(appIDs) > MaxIDsPerRequest {
		return nil, fmt.Errorf("%w: at most %d ids per request, got %d", models.ErrFetchFailed, MaxIDsPerRequest, len(appIDs))
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("ids", strings.Join(appIDs, ","))
	params.Set("region", c.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Rate limited by GG.deals API")
		return nil, fmt.Errorf("%w: rate limited", models.ErrFetchFailed)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", models.ErrFetchFailed, resp.StatusCode)
	}

	var body pricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", models.ErrFetchFailed, err)
	}
	if !body.Success {
		return nil, fmt.Errorf("%w: API reported failure", models.ErrFetchFailed)
	}

	quotes := make(map[string]*models.GameQuote, len(body.Data))
	for appID, game := range body.Data {
		if game == nil {
			// Unknown app id; the API returns an explicit null for it.
			continue
		}
		quotes[appID] = c.toQuote(appID, game)
	}
	return quotes, nil
}

func (c *Client) toQuote(appID string, game *gameData) *models.GameQuote {
	currency := game.Prices.Currency
	if currency == "" {
		currency = "USD"
	}
	pageURL := game.URL
	if pageURL == "" {
		pageURL = fmt.Sprintf("https://gg.deals/steam/app/%s/", appID)
	}
	title := game.Title
	if title == "" {
		title = appID
	}
	return &models.GameQuote{
		AppID:              appID,
		Title:              title,
		URL:                pageURL,
		Currency:           currency,
		Retail:             game.Prices.CurrentRetail,
		Keyshops:           game.Prices.CurrentKeyshops,
		HistoricalRetail:   game.Prices.HistoricalRetail,
		HistoricalKeyshops: game.Prices.HistoricalKeyshops,
	}
}
