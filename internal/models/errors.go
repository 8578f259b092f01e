package models

import "errors"

// Domain errors shared across the store, service layer and handlers.
// Handlers match on these with errors.Is and render user-facing messages;
// anything else is treated as an internal error.
var (
	// ErrAlreadyWatched is returned when adding a game that is already on
	// the watchlist.
	ErrAlreadyWatched = errors.New("game is already watched")

	// ErrNotWatched is returned for operations on a game that is not on
	// the watchlist, including updates racing with a remove.
	ErrNotWatched = errors.New("game is not watched")

	// ErrGameNotFound is returned when the pricing API has no data for the
	// requested app id.
	ErrGameNotFound = errors.New("game not found on gg.deals")

	// ErrFetchFailed is returned when a price fetch could not complete.
	ErrFetchFailed = errors.New("price fetch failed")

	// ErrPersistenceFailed is returned when the watchlist file could not be
	// written; the in-memory state has been rolled back.
	ErrPersistenceFailed = errors.New("failed to persist watchlist")

	// ErrMalformedWatchlist is returned when the persisted watchlist file
	// exists but cannot be parsed. Fatal at startup.
	ErrMalformedWatchlist = errors.New("malformed watchlist file")
)
