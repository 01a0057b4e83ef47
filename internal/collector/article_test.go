package collector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleArticle = `<html><head><title>x</title></head><body>
<h1 class="title-detail">Giá vàng tăng mạnh</h1>
<p class="description">Giá vàng trong nước tăng phiên thứ ba liên tiếp.</p>
<article class="fck_detail">
  <p class="Normal">Sáng nay, giá vàng miếng   tăng 500.000 đồng.</p>
  <p class="Normal">Giới đầu tư tiếp tục mua vào.</p>
  <p class="Normal"></p>
</article>
</body></html>`

func TestArticleExtractorPullsTitleAndParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sampleArticle))
	}))
	defer srv.Close()

	a, err := NewArticleExtractor().Extract(srv.URL+"/gia-vang.html", 0)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if a.Title != "Giá vàng tăng mạnh" {
		t.Fatalf("Title = %q", a.Title)
	}
	lines := strings.Split(a.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected lead + 2 paragraphs, got %d: %q", len(lines), a.Text)
	}
	if lines[1] != "Sáng nay, giá vàng miếng tăng 500.000 đồng." {
		t.Fatalf("whitespace not collapsed: %q", lines[1])
	}
}

func TestArticleExtractorClipsByRune(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleArticle))
	}))
	defer srv.Close()

	a, err := NewArticleExtractor().Extract(srv.URL, 10)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if n := len([]rune(a.Text)); n != 10 {
		t.Fatalf("text rune length = %d, want 10", n)
	}
}

func TestArticleExtractorEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Only title</h1></body></html>`))
	}))
	defer srv.Close()

	if _, err := NewArticleExtractor().Extract(srv.URL, 0); !errors.Is(err, ErrEmptyArticle) {
		t.Fatalf("expected ErrEmptyArticle, got %v", err)
	}
}

func TestArticleExtractorRequiresURL(t *testing.T) {
	if _, err := NewArticleExtractor().Extract("  ", 0); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
