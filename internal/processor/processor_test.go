package processor

import (
	"strings"
	"testing"

	"github.com/LJTian/NewsVoice/internal/collector"
)

func TestHashKeyDeterministicAndDistinct(t *testing.T) {
	h1a := hashKey("01/01/2024\x00a")
	h1b := hashKey("01/01/2024\x00a")
	h2 := hashKey("01/01/2024\x00b")

	if h1a != h1b {
		t.Fatalf("hashKey not deterministic: %q vs %q", h1a, h1b)
	}
	if h1a == h2 {
		t.Fatalf("hashKey should differ for different input: %q", h1a)
	}
}

func TestTruncateRunesHandlesVietnameseAndEllipsis(t *testing.T) {
	s := "Giá vàng trong nước tăng mạnh phiên thứ ba liên tiếp."
	out := truncateRunes(s, 5)
	if len([]rune(out)) != 6 { // 5 个字符 + 1 个省略号
		t.Fatalf("truncateRunes length = %d, want 6: %q", len([]rune(out)), out)
	}
	if !strings.HasSuffix(out, "…") {
		t.Fatalf("truncateRunes should append ellipsis: %q", out)
	}

	if full := truncateRunes("ngắn", 10); full != "ngắn" {
		t.Fatalf("truncateRunes should keep original when under limit: %q", full)
	}
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	p := NewSimpleProcessor()
	out := p.Dedupe([]collector.DayEntry{
		{Date: "01/01/2024", Title: "A", Content: "first"},
		{Date: "01/01/2024", Title: "A", Content: "dup"},
		{Date: "02/01/2024", Title: "A", Content: "other day"},
	})
	if len(out) != 2 {
		t.Fatalf("expected 2 entries after dedupe, got %d", len(out))
	}
	if out[0].Content != "first" || out[1].Date != "02/01/2024" {
		t.Fatalf("unexpected dedupe result: %+v", out)
	}
}

func TestReadoutFormatsAndSkipsEmpty(t *testing.T) {
	p := NewSimpleProcessor()
	got := p.Readout("World News", []collector.DayEntry{
		{Date: "01/01/2024", Title: "Tin tức Thế giới - 01/01/2024", Content: "\tA: tóm tắt\n\n\tB: tóm tắt"},
		{Date: "31/12/2023", Title: "empty", Content: "  "},
	})
	want := "World News.\n\nTin tức Thế giới - 01/01/2024.\nA: tóm tắt\n\nB: tóm tắt"
	if got != want {
		t.Fatalf("Readout =\n%q\nwant\n%q", got, want)
	}
}

func TestReadoutRespectsLimit(t *testing.T) {
	p := &SimpleProcessor{MaxRunes: 8}
	got := p.Readout("", []collector.DayEntry{{Content: "một hai ba bốn năm"}})
	if len([]rune(got)) != 9 {
		t.Fatalf("Readout length = %d, want 9: %q", len([]rune(got)), got)
	}
}

func TestFingerprintStable(t *testing.T) {
	a := collector.Snapshot{Categories: map[string][]collector.DayEntry{
		"World": {{Title: "x"}},
		"Sport": {{Title: "y"}},
	}, LastUpdated: "t1"}
	b := collector.Snapshot{Categories: map[string][]collector.DayEntry{
		"Sport": {{Title: "y"}},
		"World": {{Title: "x"}},
	}, LastUpdated: "t2"}
	if Fingerprint(a) != Fingerprint(b) {
		t.Fatalf("fingerprint should ignore map order and timestamp")
	}
	b.Categories["World"] = []collector.DayEntry{{Title: "z"}}
	if Fingerprint(a) == Fingerprint(b) {
		t.Fatalf("fingerprint should change with content")
	}
}
