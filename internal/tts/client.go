package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultRate           = 1.0
	DefaultSampleRate     = 16000
	DefaultAccent         = 4
	DefaultMaxWordPerSent = 100

	maxAudioBytes = 64 << 20
)

var (
	ErrEmptyContent = errors.New("tts: content is empty")
	ErrNoAudio      = errors.New("tts: no waveform data in response")
)

// Request 合成请求，零值字段在发送前补默认值
type Request struct {
	Content        string  `json:"content"`
	Rate           float64 `json:"rate"`
	SampleRate     int     `json:"sample_rate"`
	Accent         int     `json:"accent"`
	ReturnType     string  `json:"return_type"`
	AudioFormat    string  `json:"audio_format"`
	MaxWordPerSent int     `json:"max_word_per_sent"`
}

// WithDefaults 返回补齐默认值后的副本
func (r Request) WithDefaults() Request {
	if r.Rate <= 0 {
		r.Rate = DefaultRate
	}
	if r.SampleRate <= 0 {
		r.SampleRate = DefaultSampleRate
	}
	if r.Accent <= 0 {
		r.Accent = DefaultAccent
	}
	if r.ReturnType == "" {
		r.ReturnType = ReturnURL
	}
	if r.AudioFormat == "" {
		r.AudioFormat = FormatWAV
	}
	if r.MaxWordPerSent <= 0 {
		r.MaxWordPerSent = DefaultMaxWordPerSent
	}
	return r
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return ErrEmptyContent
	}
	if r.ReturnType != "" && !hasOption(ReturnTypes(), r.ReturnType) {
		return fmt.Errorf("tts: unknown return type %q", r.ReturnType)
	}
	if r.AudioFormat != "" && !hasOption(AudioFormats(), r.AudioFormat) {
		return fmt.Errorf("tts: unknown audio format %q", r.AudioFormat)
	}
	return nil
}

// Result 合成结果；ContentType 形如 audio/wav
type Result struct {
	Audio          []byte
	ContentType    string
	NormalizedText string
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient 合成可能较慢，超时放宽到 2 分钟
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// WithToken 返回带 bearer token 的副本
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Synthesize(ctx context.Context, in Request) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req := in.WithDefaults()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts: synthesize: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("tts: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts: synthesize failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	contentType := "audio/" + req.AudioFormat
	if req.ReturnType == ReturnFile {
		return &Result{Audio: data, ContentType: contentType}, nil
	}

	var payload struct {
		Audio      string `json:"audio"`
		NormedText string `json:"normed_text"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("tts: decode response: %w", err)
	}
	if payload.Audio == "" {
		return nil, ErrNoAudio
	}
	audio, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, fmt.Errorf("tts: decode waveform: %w", err)
	}
	return &Result{Audio: audio, ContentType: contentType, NormalizedText: payload.NormedText}, nil
}
