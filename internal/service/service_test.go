package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dealbot/internal/metrics"
	"dealbot/internal/models"
	"dealbot/internal/repository/jsonfile"
)

// fakeSource implements PriceSource with a pluggable fetch function.
type fakeSource struct {
	fetch func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error)
}

func (f *fakeSource) FetchPrices(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
	return f.fetch(ctx, appIDs)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func quote(appID, retail string) *models.GameQuote {
	q := &models.GameQuote{
		AppID:    appID,
		Title:    "Game " + appID,
		URL:      "https://gg.deals/steam/app/" + appID + "/",
		Currency: "USD",
	}
	if retail != "" {
		q.Retail = dec(retail)
	}
	return q
}

func newService(t *testing.T, src *fakeSource) (*Service, *jsonfile.Store) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)

	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "watchlist.json"), l)
	if err != nil {
		t.Fatal(err)
	}
	return New(store, src, metrics.New(prometheus.NewRegistry()), l), store
}

func TestWatchEstablishesBaseline(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return map[string]*models.GameQuote{"100": quote("100", "20.00")}, nil
	}}
	svc, store := newService(t, src)

	item, err := svc.Watch(context.Background(), "100", "@tester")
	if err != nil {
		t.Fatalf("expected watch to succeed, got %v", err)
	}
	if item.Name != "Game 100" {
		t.Errorf("unexpected name %q", item.Name)
	}
	if item.LastRetail == nil || !item.LastRetail.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("expected baseline 20.00, got %v", item.LastRetail)
	}
	if _, err := store.Get("100"); err != nil {
		t.Fatalf("item must be persisted, got %v", err)
	}

	if _, err := svc.Watch(context.Background(), "100", "@tester"); !errors.Is(err, models.ErrAlreadyWatched) {
		t.Fatalf("expected ErrAlreadyWatched, got %v", err)
	}
}

func TestWatchUnknownGame(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return map[string]*models.GameQuote{}, nil
	}}
	svc, store := newService(t, src)

	if _, err := svc.Watch(context.Background(), "404", "@tester"); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := store.Get("404"); !errors.Is(err, models.ErrNotWatched) {
		t.Fatal("rejected game must not be added")
	}
}

func TestWatchSurvivesFetchFailure(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return nil, models.ErrFetchFailed
	}}
	svc, _ := newService(t, src)

	item, err := svc.Watch(context.Background(), "100", "@tester")
	if err != nil {
		t.Fatalf("transient fetch failure must not reject the watch, got %v", err)
	}
	if item.LastRetail != nil || item.LastKeyshops != nil {
		t.Fatal("expected no baseline after a failed fetch")
	}
}

func TestUnwatch(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return map[string]*models.GameQuote{"100": quote("100", "20.00")}, nil
	}}
	svc, _ := newService(t, src)

	if _, err := svc.Watch(context.Background(), "100", "@tester"); err != nil {
		t.Fatal(err)
	}
	item, err := svc.Unwatch("100")
	if err != nil {
		t.Fatalf("expected unwatch to succeed, got %v", err)
	}
	if item.AppID != "100" {
		t.Errorf("unexpected removed item %q", item.AppID)
	}
	if _, err := svc.Unwatch("100"); !errors.Is(err, models.ErrNotWatched) {
		t.Fatalf("expected ErrNotWatched, got %v", err)
	}
}

func TestLookupDoesNotTouchBaseline(t *testing.T) {
	price := "20.00"
	src := &fakeSource{}
	src.fetch = func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return map[string]*models.GameQuote{"100": quote("100", price)}, nil
	}
	svc, store := newService(t, src)

	if _, err := svc.Watch(context.Background(), "100", "@tester"); err != nil {
		t.Fatal(err)
	}

	// The price crashes, but a manual lookup must not move the baseline.
	price = "5.00"
	q, err := svc.Lookup(context.Background(), "100")
	if err != nil {
		t.Fatal(err)
	}
	if !q.Retail.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("expected live quote 5.00, got %v", q.Retail)
	}

	item, err := store.Get("100")
	if err != nil {
		t.Fatal(err)
	}
	if !item.LastRetail.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("lookup must not change the stored baseline, got %v", item.LastRetail)
	}
}

func TestLookupUnknownGame(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		return map[string]*models.GameQuote{}, nil
	}}
	svc, _ := newService(t, src)

	if _, err := svc.Lookup(context.Background(), "404"); !errors.Is(err, models.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestItemsOrder(t *testing.T) {
	src := &fakeSource{fetch: func(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
		m := make(map[string]*models.GameQuote)
		for _, id := range appIDs {
			m[id] = quote(id, "10.00")
		}
		return m, nil
	}}
	svc, _ := newService(t, src)

	for _, id := range []string{"300", "100", "200"} {
		if _, err := svc.Watch(context.Background(), id, "@tester"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	items := svc.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].AppID != "300" || items[1].AppID != "100" || items[2].AppID != "200" {
		t.Fatalf("expected watch order 300,100,200, got %s,%s,%s",
			items[0].AppID, items[1].AppID, items[2].AppID)
	}
}
