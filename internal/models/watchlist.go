package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WatchedItem represents one game tracked on the watchlist, keyed by its
// Steam App ID. The price fields hold the last observed baseline only —
// the store keeps no history, just the comparison point for the next poll.
type WatchedItem struct {
	AppID              string           `json:"app_id"`
	Name               string           `json:"name"`
	LastRetail         *decimal.Decimal `json:"last_retail"`
	LastKeyshops       *decimal.Decimal `json:"last_keyshops"`
	HistoricalRetail   *decimal.Decimal `json:"historical_retail,omitempty"`
	HistoricalKeyshops *decimal.Decimal `json:"historical_keyshops,omitempty"`
	Currency           string           `json:"currency"`
	URL                string           `json:"url,omitempty"`
	AddedBy            string           `json:"added_by,omitempty"`
	AddedAt            time.Time        `json:"added_at"`
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (w *WatchedItem) Clone() *WatchedItem {
	c := *w
	c.LastRetail = copyDecimal(w.LastRetail)
	c.LastKeyshops = copyDecimal(w.LastKeyshops)
	c.HistoricalRetail = copyDecimal(w.HistoricalRetail)
	c.HistoricalKeyshops = copyDecimal(w.HistoricalKeyshops)
	return &c
}

// PriceUpdate carries freshly fetched prices for a single watched item.
// Nil price fields mean the API reported no price for that channel; they
// still overwrite the stored baseline.
type PriceUpdate struct {
	Retail             *decimal.Decimal
	Keyshops           *decimal.Decimal
	HistoricalRetail   *decimal.Decimal
	HistoricalKeyshops *decimal.Decimal
	Currency           string
}

// DropReport describes the outcome of one price update: the previous
// baseline and, per channel, the drop amount (old − new). A nil drop field
// means that channel did not drop.
type DropReport struct {
	Item         *WatchedItem
	OldRetail    *decimal.Decimal
	OldKeyshops  *decimal.Decimal
	RetailDrop   *decimal.Decimal
	KeyshopsDrop *decimal.Decimal
}

// Dropped reports whether at least one price channel dropped.
func (r *DropReport) Dropped() bool {
	return r.RetailDrop != nil || r.KeyshopsDrop != nil
}

// GameQuote is a point-in-time price quote for one game as returned by the
// pricing API. It is never stored; on-demand lookups render it directly.
type GameQuote struct {
	AppID              string
	Title              string
	URL                string
	Currency           string
	Retail             *decimal.Decimal
	Keyshops           *decimal.Decimal
	HistoricalRetail   *decimal.Decimal
	HistoricalKeyshops *decimal.Decimal
}

// SortItems orders watchlist entries by watch creation time, oldest first,
// falling back to app id for a stable order.
func SortItems(items []*WatchedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AppID < items[j].AppID
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
}

// PriceString renders a nullable price for chat output, e.g. "9.99 USD".
func PriceString(p *decimal.Decimal, currency string) string {
	if p == nil {
		return "N/A"
	}
	if currency == "" {
		return p.String()
	}
	return p.String() + " " + currency
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
