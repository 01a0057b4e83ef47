package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchByCategoriesDecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get_news_by_categories" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"categories": {
				"World News": [{"date": "01/01/2024", "title": "Tin tức Thế giới - 01/01/2024", "content": "a: b", "article_count": 3}],
				"Breaking News": []
			},
			"last_updated": "2024-01-01T10:00:00Z"
		}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := NewNewsClient(srv.URL + "/").FetchByCategories(ctx)
	if err != nil {
		t.Fatalf("FetchByCategories error: %v", err)
	}
	if snap.LastUpdated != "2024-01-01T10:00:00Z" {
		t.Fatalf("LastUpdated = %q", snap.LastUpdated)
	}
	world := snap.Categories["World News"]
	if len(world) != 1 || world[0].ArticleCount != 3 || world[0].Date != "01/01/2024" {
		t.Fatalf("unexpected World News entries: %+v", world)
	}
	names := snap.CategoryNames()
	if len(names) != 2 || names[0] != "Breaking News" || names[1] != "World News" {
		t.Fatalf("CategoryNames = %v, want known order", names)
	}
}

func TestFetchByCategoriesRejectsMissingTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"categories": {}}`))
	}))
	defer srv.Close()

	_, err := NewNewsClient(srv.URL).FetchByCategories(context.Background())
	if !errors.Is(err, ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
}

func TestFetchSurfacesBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Failed to initialize Firebase"}`))
	}))
	defer srv.Close()

	c := NewNewsClient(srv.URL)
	_, err := c.FetchByCategories(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Failed to initialize Firebase") {
		t.Fatalf("expected backend error message, got %v", err)
	}
	if _, err := c.FetchLatest(context.Background()); err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetchLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get_latest_news" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"date": "02/01/2024", "category": "Breaking News", "title": "Tổng hợp tin tức hôm nay", "content": "- a: b"}`))
	}))
	defer srv.Close()

	bn, err := NewNewsClient(srv.URL).FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest error: %v", err)
	}
	if bn.Category != "Breaking News" || bn.Date != "02/01/2024" {
		t.Fatalf("unexpected breaking news: %+v", bn)
	}
}

func TestSortCategoriesUnknownLast(t *testing.T) {
	got := sortCategories(map[string][]DayEntry{
		"Zeta":       nil,
		"Sport News": nil,
		"Alpha":      nil,
		"World News": nil,
	})
	want := []string{"World News", "Sport News", "Alpha", "Zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortCategories = %v, want %v", got, want)
		}
	}
}
