package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"dealbot/internal/ggdeals"
	"dealbot/internal/metrics"
	"dealbot/internal/models"
	"dealbot/internal/repository"
)

// PriceSource fetches current prices for a set of Steam App IDs. App ids
// the source does not know are absent from the result map.
type PriceSource interface {
	FetchPrices(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error)
}

// compile-time check that the GG.deals client satisfies PriceSource
var _ PriceSource = (*ggdeals.Client)(nil)

// Service is the business logic layer: it owns the watchlist repository and
// the price source, and exposes the operations the command handlers, the
// HTTP API and the poll scheduler drive.
type Service struct {
	Watchlist repository.WatchlistRepository
	prices    PriceSource
	metrics   *metrics.Metrics
	logger    *logrus.Logger

	// checking guards against overlapping poll cycles when a fetch
	// outlasts the configured interval.
	checking atomic.Bool
}

// New creates a new Service with all required dependencies.
func New(watchlist repository.WatchlistRepository, prices PriceSource, m *metrics.Metrics, logger *logrus.Logger) *Service {
	return &Service{
		Watchlist: watchlist,
		prices:    prices,
		metrics:   m,
		logger:    logger,
	}
}

// Watch adds a game to the watchlist. The current price is fetched inline
// to establish the baseline; if the fetch fails transiently the game is
// still added with no baseline and the first poll cycle fills it in. An app
// id the API does not know at all is rejected.
func (s *Service) Watch(ctx context.Context, appID, addedBy string) (*models.WatchedItem, error) {
	if _, err := s.Watchlist.Get(appID); err == nil {
		return nil, models.ErrAlreadyWatched
	}

	item := &models.WatchedItem{
		AppID:    appID,
		Name:     appID,
		Currency: "USD",
		URL:      fmt.Sprintf("https://gg.deals/steam/app/%s/", appID),
		AddedBy:  addedBy,
		AddedAt:  time.Now().UTC(),
	}

	quotes, err := s.prices.FetchPrices(ctx, []string{appID})
	switch {
	case err != nil:
		s.logger.WithFields(logrus.Fields{
			"app_id": appID,
			"error":  err,
		}).Warn("Baseline fetch failed, watching without a baseline")
	case quotes[appID] == nil:
		return nil, models.ErrGameNotFound
	default:
		quote := quotes[appID]
		item.Name = quote.Title
		item.URL = quote.URL
		item.Currency = quote.Currency
		item.LastRetail = quote.Retail
		item.LastKeyshops = quote.Keyshops
		item.HistoricalRetail = quote.HistoricalRetail
		item.HistoricalKeyshops = quote.HistoricalKeyshops
	}

	if err := s.Watchlist.Add(item); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"app_id":   appID,
		"name":     item.Name,
		"added_by": addedBy,
	}).Info("Game added to watchlist")
	return item, nil
}

// Unwatch removes a game from the watchlist and returns the removed entry.
func (s *Service) Unwatch(appID string) (*models.WatchedItem, error) {
	item, err := s.Watchlist.Get(appID)
	if err != nil {
		return nil, err
	}
	if err := s.Watchlist.Remove(appID); err != nil {
		return nil, err
	}

	s.logger.WithField("app_id", appID).Info("Game removed from watchlist")
	return item, nil
}

// Items returns all watched games, oldest watch first.
func (s *Service) Items() []*models.WatchedItem {
	return s.Watchlist.List()
}

// Lookup fetches the current price for any app id, watched or not. It never
// touches stored baselines, so a manual check cannot suppress the next
// poll cycle's drop detection.
func (s *Service) Lookup(ctx context.Context, appID string) (*models.GameQuote, error) {
	quotes, err := s.prices.FetchPrices(ctx, []string{appID})
	if err != nil {
		return nil, err
	}
	quote, ok := quotes[appID]
	if !ok {
		return nil, models.ErrGameNotFound
	}
	return quote, nil
}
