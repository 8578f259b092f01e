package ggdeals

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"dealbot/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	l := logrus.New()
	l.SetOutput(io.Discard)
	c := NewClient("test-key", "us", l)
	c.baseURL = srv.URL + "/"
	return c
}

func TestFetchPrices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") != "test-key" {
			t.Errorf("expected key=test-key, got %q", q.Get("key"))
		}
		if q.Get("ids") != "100,200,300" {
			t.Errorf("expected ids=100,200,300, got %q", q.Get("ids"))
		}
		if q.Get("region") != "us" {
			t.Errorf("expected region=us, got %q", q.Get("region"))
		}
		io.WriteString(w, `{
			"success": true,
			"data": {
				"100": {
					"title": "Half-Life 2",
					"url": "https://gg.deals/game/half-life-2/",
					"prices": {
						"currentRetail": "9.99",
						"currentKeyshops": "4.50",
						"historicalRetail": "0.99",
						"historicalKeyshops": null,
						"currency": "USD"
					}
				},
				"200": {
					"title": "",
					"url": "",
					"prices": {
						"currentRetail": null,
						"currentKeyshops": "12.00",
						"currency": ""
					}
				},
				"300": null
			}
		}`)
	})

	quotes, err := c.FetchPrices(context.Background(), []string{"100", "200", "300"})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes (unknown id omitted), got %d", len(quotes))
	}

	hl2 := quotes["100"]
	if hl2 == nil {
		t.Fatal("expected quote for 100")
	}
	if hl2.Title != "Half-Life 2" {
		t.Errorf("unexpected title %q", hl2.Title)
	}
	if hl2.Retail == nil || !hl2.Retail.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("unexpected retail %v", hl2.Retail)
	}
	if hl2.HistoricalKeyshops != nil {
		t.Errorf("expected nil historical keyshops, got %v", hl2.HistoricalKeyshops)
	}

	// Fallbacks for sparse entries: title/url/currency are filled in.
	sparse := quotes["200"]
	if sparse == nil {
		t.Fatal("expected quote for 200")
	}
	if sparse.Title != "200" {
		t.Errorf("expected app id as fallback title, got %q", sparse.Title)
	}
	if sparse.URL != "https://gg.deals/steam/app/200/" {
		t.Errorf("unexpected fallback url %q", sparse.URL)
	}
	if sparse.Currency != "USD" {
		t.Errorf("expected USD fallback currency, got %q", sparse.Currency)
	}
	if sparse.Retail != nil {
		t.Errorf("expected nil retail, got %v", sparse.Retail)
	}

	if _, ok := quotes["300"]; ok {
		t.Error("unknown app id must be absent from the result")
	}
}

func TestFetchPricesEmptyInput(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty id list")
	})
	quotes, err := c.FetchPrices(context.Background(), nil)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected empty result, got %d", len(quotes))
	}
}

func TestFetchPricesRateLimited(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	if _, err := c.FetchPrices(context.Background(), []string{"100"}); !errors.Is(err, models.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchPricesAPIFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": false, "data": {}}`)
	})
	if _, err := c.FetchPrices(context.Background(), []string{"100"}); !errors.Is(err, models.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestFetchPricesTooManyIDs(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("oversized batches must be rejected before any request")
	})
	ids := make([]string, MaxIDsPerRequest+1)
	for i := range ids {
		ids[i] = "1"
	}
	if _, err := c.FetchPrices(context.Background(), ids); !errors.Is(err, models.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}
