// Package jsonfile implements the watchlist repository on top of a single
// JSON file. Every mutation rewrites the whole file before it is
// acknowledged; a failed write rolls the in-memory state back so memory and
// disk never diverge.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
)

// watchlistFile is the persisted envelope. The map is keyed by Steam App ID.
type watchlistFile struct {
	Games map[string]*models.WatchedItem `json:"games"`
}

// Store is a file-backed watchlist repository. All operations are safe for
// concurrent use by the command handlers and the poll scheduler.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *logrus.Logger
	items  map[string]*models.WatchedItem
}

// Open loads the watchlist from path. A missing or empty file yields an
// empty watchlist; a file that exists but does not parse is an error, so a
// corrupted watchlist is never silently discarded at startup.
func Open(path string, logger *logrus.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger,
		items:  make(map[string]*models.WatchedItem),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read watchlist file %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}

	var file watchlistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMalformedWatchlist, path, err)
	}
	for appID, item := range file.Games {
		if item == nil {
			return nil, fmt.Errorf("%w: %s: null entry for app id %s", models.ErrMalformedWatchlist, path, appID)
		}
		item.AppID = appID
		s.items[appID] = item
	}

	logger.Infof("Loaded watchlist with %d game(s) from %s", len(s.items), path)
	return s, nil
}

// Add inserts a new watched item and persists the watchlist.
func (s *Store) Add(item *models.WatchedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.AppID]; exists {
		return models.ErrAlreadyWatched
	}

	s.items[item.AppID] = item.Clone()
	if err := s.persistLocked(); err != nil {
		delete(s.items, item.AppID)
		return err
	}
	return nil
}

// Remove deletes a watched item and persists the watchlist.
func (s *Store) Remove(appID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.items[appID]
	if !exists {
		return models.ErrNotWatched
	}

	delete(s.items, appID)
	if err := s.persistLocked(); err != nil {
		s.items[appID] = prev
		return err
	}
	return nil
}

// List returns a snapshot of all watched items ordered by watch time.
func (s *Store) List() []*models.WatchedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]*models.WatchedItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	models.SortItems(items)
	return items
}

// Get returns a copy of one watched item.
func (s *Store) Get(appID string) (*models.WatchedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[appID]
	if !exists {
		return nil, models.ErrNotWatched
	}
	return item.Clone(), nil
}

// UpdatePrices performs the baseline comparison and overwrite. A drop is a
// strictly lower new price than the stored baseline; equal prices and items
// with no baseline yet report no drop. The new values always replace the
// stored ones so the next cycle compares against the latest observation.
func (s *Store) UpdatePrices(appID string, update models.PriceUpdate) (*models.DropReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[appID]
	if !exists {
		return nil, models.ErrNotWatched
	}

	prev := item.Clone()
	report := &models.DropReport{
		OldRetail:   prev.LastRetail,
		OldKeyshops: prev.LastKeyshops,
	}

	if item.LastRetail != nil && update.Retail != nil && update.Retail.LessThan(*item.LastRetail) {
		diff := item.LastRetail.Sub(*update.Retail)
		report.RetailDrop = &diff
	}
	if item.LastKeyshops != nil && update.Keyshops != nil && update.Keyshops.LessThan(*item.LastKeyshops) {
		diff := item.LastKeyshops.Sub(*update.Keyshops)
		report.KeyshopsDrop = &diff
	}

	item.LastRetail = update.Retail
	item.LastKeyshops = update.Keyshops
	if update.HistoricalRetail != nil {
		item.HistoricalRetail = update.HistoricalRetail
	}
	if update.HistoricalKeyshops != nil {
		item.HistoricalKeyshops = update.HistoricalKeyshops
	}
	if update.Currency != "" {
		item.Currency = update.Currency
	}

	if err := s.persistLocked(); err != nil {
		// Roll back so we never report a drop that was not durably recorded.
		s.items[appID] = prev
		return nil, err
	}

	report.Item = item.Clone()
	return report, nil
}

// persistLocked rewrites the watchlist file. Callers must hold s.mu. The
// write goes to a temp file in the same directory followed by a rename, so
// a crash mid-write leaves the previous file intact.
func (s *Store) persistLocked() error {
	file := watchlistFile{Games: s.items}
	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}

	tmp, err := os.CreateTemp(dir, ".watchlist-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", models.ErrPersistenceFailed, err)
	}
	return nil
}
