package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"dealbot/internal/ggdeals"
	"dealbot/internal/models"
)

// batchPause is the delay between consecutive API batches within one cycle,
// to stay under the GG.deals rate limit.
const batchPause = 2 * time.Second

// DropCallback is a function that announces a detected price drop.
type DropCallback func(item *models.WatchedItem, report *models.DropReport)

// StartPriceScheduler runs a background loop that re-checks all watched
// prices every interval and invokes the callback for each detected drop.
// It blocks until the context is cancelled, so it should be launched in a
// separate goroutine.
func (s *Service) StartPriceScheduler(ctx context.Context, interval time.Duration, callback DropCallback) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Infof("Price scheduler started, checking every %s", interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Price scheduler stopped")
			return
		case <-ticker.C:
			if !s.checking.CAS(false, true) {
				s.logger.Warn("Previous price check still running, skipping this tick")
				continue
			}
			s.checkPrices(ctx, callback)
			s.checking.Store(false)
		}
	}
}

// checkPrices runs one poll cycle: snapshot the watchlist, fetch fresh
// prices in API-sized batches, feed each result through the store's update
// logic and announce drops. Items the API returned nothing for keep their
// baseline and are retried next cycle; a failed batch never stops the
// scheduler from ticking.
func (s *Service) checkPrices(ctx context.Context, callback DropCallback) {
	items := s.Watchlist.List()
	s.metrics.WatchlistSize.Set(float64(len(items)))
	if len(items) == 0 {
		return
	}

	appIDs := make([]string, 0, len(items))
	for _, item := range items {
		appIDs = append(appIDs, item.AppID)
	}

	s.logger.Infof("Checking prices for %d game(s)", len(appIDs))

	var cycleErr error
	for start := 0; start < len(appIDs); start += ggdeals.MaxIDsPerRequest {
		end := min(start+ggdeals.MaxIDsPerRequest, len(appIDs))
		batch := appIDs[start:end]

		if start > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(batchPause):
			}
		}

		quotes, err := s.prices.FetchPrices(ctx, batch)
		if err != nil {
			s.metrics.FetchErrors.Inc()
			cycleErr = multierror.Append(cycleErr, fmt.Errorf("batch starting at %s: %w", batch[0], err))
			continue
		}

		for _, appID := range batch {
			quote, ok := quotes[appID]
			if !ok {
				s.metrics.ItemsSkipped.Inc()
				s.logger.WithField("app_id", appID).Warn("No price data this cycle, keeping previous baseline")
				continue
			}
			s.applyQuote(appID, quote, callback)
		}
	}

	s.metrics.PollCycles.Inc()
	if cycleErr != nil {
		s.logger.Errorf("Price check cycle finished with errors: %v", cycleErr)
	}
}

// applyQuote feeds one fetched quote into the store and announces the drop,
// if any.
func (s *Service) applyQuote(appID string, quote *models.GameQuote, callback DropCallback) {
	report, err := s.Watchlist.UpdatePrices(appID, models.PriceUpdate{
		Retail:             quote.Retail,
		Keyshops:           quote.Keyshops,
		HistoricalRetail:   quote.HistoricalRetail,
		HistoricalKeyshops: quote.HistoricalKeyshops,
		Currency:           quote.Currency,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotWatched) {
			// Unwatched while the fetch was in flight; nothing to update.
			s.logger.WithField("app_id", appID).Info("Game was unwatched during the price check")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"app_id": appID,
			"error":  err,
		}).Error("Failed to record new prices")
		return
	}

	if !report.Dropped() {
		return
	}

	s.metrics.DropsDetected.Inc()
	s.logger.WithFields(logrus.Fields{
		"app_id": appID,
		"name":   report.Item.Name,
	}).Info("Price drop detected")
	callback(report.Item, report)
}
