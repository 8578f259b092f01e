package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dealbot/internal/metrics"
	"dealbot/internal/models"
	"dealbot/internal/repository/jsonfile"
	"dealbot/internal/service"
)

type fakeSource struct {
	quotes map[string]*models.GameQuote
}

func (f *fakeSource) FetchPrices(ctx context.Context, appIDs []string) (map[string]*models.GameQuote, error) {
	return f.quotes, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *jsonfile.Store) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)

	store, err := jsonfile.Open(filepath.Join(t.TempDir(), "watchlist.json"), l)
	if err != nil {
		t.Fatal(err)
	}

	retail := decimal.RequireFromString("9.99")
	src := &fakeSource{quotes: map[string]*models.GameQuote{
		"100": {AppID: "100", Title: "Half-Life 2", Currency: "USD", Retail: &retail},
	}}

	registry := prometheus.NewRegistry()
	svc := service.New(store, src, metrics.New(registry), l)
	srv := httptest.NewServer(NewServer(svc, registry, l).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func addItem(t *testing.T, store *jsonfile.Store, appID string) {
	t.Helper()
	err := store.Add(&models.WatchedItem{
		AppID:    appID,
		Name:     "Game " + appID,
		Currency: "USD",
		AddedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestGetWatchlist(t *testing.T) {
	srv, store := newTestServer(t)
	addItem(t, store, "100")
	addItem(t, store, "200")

	resp, err := http.Get(srv.URL + "/api/watchlist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Count int                   `json:"count"`
		Games []*models.WatchedItem `json:"games"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 || len(body.Games) != 2 {
		t.Fatalf("expected 2 games, got count=%d len=%d", body.Count, len(body.Games))
	}
}

func TestGetItemNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/watchlist/999")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteItem(t *testing.T) {
	srv, store := newTestServer(t)
	addItem(t, store, "100")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/watchlist/100", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if _, err := store.Get("100"); err == nil {
		t.Fatal("expected item to be removed")
	}
}

func TestLookupEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/watchlist/100/price")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["title"] != "Half-Life 2" {
		t.Fatalf("unexpected title %v", body["title"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
