package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBytes = 64 << 20

// Result 分析服务的 JSON 结果，字段随后端版本变化，原样透传
type Result map[string]any

// File 上传的音频
type File struct {
	Name string
	Data io.Reader
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient 声音克隆最长需要几分钟，超时与后端一致设为 5 分钟
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// NetSpeech 语音质量分析
func (c *Client) NetSpeech(ctx context.Context, f File) (Result, error) {
	return c.analyze(ctx, "netspeech", "/api/audio/netspeech", f, nil)
}

// SNR 信噪比分析
func (c *Client) SNR(ctx context.Context, f File) (Result, error) {
	return c.analyze(ctx, "snr", "/api/audio/snr", f, nil)
}

type ConvertParams struct {
	SampleRate  int
	Rate        float64
	ReturnType  string
	AudioFormat string
}

func (p ConvertParams) query() url.Values {
	if p.SampleRate <= 0 {
		p.SampleRate = 22050
	}
	if p.Rate <= 0 {
		p.Rate = 1.0
	}
	if p.ReturnType == "" {
		p.ReturnType = "url"
	}
	if p.AudioFormat == "" {
		p.AudioFormat = "wav"
	}
	q := url.Values{}
	q.Set("sample_rate", strconv.Itoa(p.SampleRate))
	q.Set("rate", strconv.FormatFloat(p.Rate, 'f', -1, 64))
	q.Set("return_type", p.ReturnType)
	q.Set("audio_format", p.AudioFormat)
	return q
}

// Convert 重采样 / 变速 / 转格式
func (c *Client) Convert(ctx context.Context, f File, p ConvertParams) (Result, error) {
	return c.analyze(ctx, "converter", "/api/audio/converter", f, p.query())
}

func (c *Client) analyze(ctx context.Context, op, path string, f File, q url.Values) (Result, error) {
	body, contentType, err := encodeForm(f, nil)
	if err != nil {
		return nil, fmt.Errorf("audio: %s: %w", op, err)
	}
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	data, _, err := c.post(ctx, endpoint, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("audio: %s: %w", op, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("audio: %s: decode: %w", op, err)
	}
	return res, nil
}

// CloneRequest 声音克隆：参考音频 + 待生成文本
type CloneRequest struct {
	Reference     File
	GenText       string
	RefText       string
	RefLang       string
	GenLang       string
	IsUpload      *bool
	IsTranslation bool
}

var ErrEmptyGenText = errors.New("audio: gen_text is empty")

// Clone 返回生成的音频字节
func (c *Client) Clone(ctx context.Context, req CloneRequest) ([]byte, string, error) {
	if strings.TrimSpace(req.GenText) == "" {
		return nil, "", ErrEmptyGenText
	}
	if req.RefLang == "" {
		req.RefLang = "vi"
	}
	if req.GenLang == "" {
		req.GenLang = "vi"
	}
	isUpload := true
	if req.IsUpload != nil {
		isUpload = *req.IsUpload
	}

	fields := [][2]string{
		{"gen_text", req.GenText},
		{"ref_lang", req.RefLang},
		{"gen_lang", req.GenLang},
		{"is_upload", strconv.FormatBool(isUpload)},
		{"is_translation", strconv.FormatBool(req.IsTranslation)},
	}
	if req.RefText != "" {
		fields = append(fields, [2]string{"ref_text", req.RefText})
	}

	body, contentType, err := encodeForm(req.Reference, fields)
	if err != nil {
		return nil, "", fmt.Errorf("audio: clone: %w", err)
	}
	data, respType, err := c.post(ctx, c.baseURL+"/api/audio/generate", body, contentType)
	if err != nil {
		return nil, "", fmt.Errorf("audio: clone: %w", err)
	}
	if respType == "" || strings.HasPrefix(respType, "application/json") {
		respType = "audio/wav"
	}
	return data, respType, nil
}

func encodeForm(f File, fields [][2]string) (*bytes.Buffer, string, error) {
	if f.Data == nil {
		return nil, "", errors.New("no audio file")
	}
	name := f.Name
	if name == "" {
		name = "recording.wav"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader, contentType string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", backendError(resp.StatusCode, data)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// backendError 优先使用后端返回的 {"error": "..."}
func backendError(status int, data []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return errors.New(e.Error)
	}
	return fmt.Errorf("request failed with status %d", status)
}
