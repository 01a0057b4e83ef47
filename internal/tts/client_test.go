package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWithDefaults(t *testing.T) {
	r := Request{Content: "xin chào"}.WithDefaults()
	if r.Rate != 1.0 || r.SampleRate != 16000 || r.Accent != 4 ||
		r.ReturnType != "url" || r.AudioFormat != "wav" || r.MaxWordPerSent != 100 {
		t.Fatalf("unexpected defaults: %+v", r)
	}

	custom := Request{Content: "x", Rate: 1.2, Accent: 7, ReturnType: "file"}.WithDefaults()
	if custom.Rate != 1.2 || custom.Accent != 7 || custom.ReturnType != "file" {
		t.Fatalf("explicit values should be kept: %+v", custom)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"ok", Request{Content: "hello"}, false},
		{"blank", Request{Content: "  \n"}, true},
		{"bad return", Request{Content: "x", ReturnType: "base64"}, true},
		{"bad format", Request{Content: "x", AudioFormat: "ogg"}, true},
		{"mp3 file", Request{Content: "x", ReturnType: "file", AudioFormat: "mp3"}, false},
	}
	for _, c := range cases {
		if err := c.req.Validate(); (err != nil) != c.wantErr {
			t.Fatalf("%s: Validate() err = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestSynthesizeURL(t *testing.T) {
	wave := []byte("RIFF....WAVEfmt ")
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts/synthesize" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      0,
			"audio":       base64.StdEncoding.EncodeToString(wave),
			"normed_text": "xin chào",
		})
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).WithToken("tok").Synthesize(context.Background(), Request{Content: "xin chào"})
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if string(res.Audio) != string(wave) || res.NormalizedText != "xin chào" || res.ContentType != "audio/wav" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got.SampleRate != 16000 || got.Accent != 4 || got.MaxWordPerSent != 100 {
		t.Fatalf("defaults not sent: %+v", got)
	}
}

func TestSynthesizeFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-mp3-bytes"))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Synthesize(context.Background(), Request{
		Content: "x", ReturnType: ReturnFile, AudioFormat: FormatMP3,
	})
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if string(res.Audio) != "ID3-mp3-bytes" || res.ContentType != "audio/mp3" || res.NormalizedText != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	noAudio := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"normed_text": "x"}`))
	}))
	defer noAudio.Close()
	if _, err := NewClient(noAudio.URL).Synthesize(context.Background(), Request{Content: "x"}); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}

	offline := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusServiceUnavailable)
	}))
	defer offline.Close()
	_, err := NewClient(offline.URL).Synthesize(context.Background(), Request{Content: "x"})
	if err == nil || !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model offline") {
		t.Fatalf("expected status and body in error, got %v", err)
	}

	if _, err := NewClient(offline.URL).Synthesize(context.Background(), Request{}); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestOptionsCatalog(t *testing.T) {
	cat := Options()
	if len(cat.Voices) != 10 || cat.Voices[3].ID != "4" {
		t.Fatalf("unexpected voices: %v", cat.Voices)
	}
	if !hasOption(cat.SampleRates, "22050") || hasOption(cat.ReturnTypes, "base64") {
		t.Fatalf("unexpected catalog: %+v", cat)
	}
}
