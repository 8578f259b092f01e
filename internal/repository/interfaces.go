package repository

import (
	"dealbot/internal/models"
)

// WatchlistRepository defines the interface for watchlist state operations.
// Implementations must serialize mutations and guarantee that a mutation is
// durable before it returns without error.
type WatchlistRepository interface {
	// Add inserts a new watched item. Returns models.ErrAlreadyWatched if
	// the app id is already tracked.
	Add(item *models.WatchedItem) error

	// Remove deletes a watched item. Returns models.ErrNotWatched if the
	// app id is not tracked.
	Remove(appID string) error

	// List returns a snapshot of all watched items, oldest first.
	List() []*models.WatchedItem

	// Get returns a copy of a single watched item, or models.ErrNotWatched.
	Get(appID string) (*models.WatchedItem, error)

	// UpdatePrices overwrites the stored price baseline with the fetched
	// values and reports which channels dropped. Returns
	// models.ErrNotWatched if the item was removed while the fetch was in
	// flight.
	UpdatePrices(appID string, update models.PriceUpdate) (*models.DropReport, error)
}
