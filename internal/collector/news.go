package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const (
	newsMaxResponseBytes = 4 << 20 // 4MB，7 天 × 4 个分类的合并摘要
	newsErrorBodyBytes   = 4 << 10
)

// 前端展示时的分类顺序，与后端 NEWS_CATEGORIES 的映射保持一致
var knownCategories = []string{"Breaking News", "World News", "Investment News", "Sport News"}

// NewsClient 调用新闻聚合服务的 HTTP 接口
type NewsClient struct {
	baseURL string
	http    *http.Client
}

var _ Fetcher = (*NewsClient)(nil)

// NewNewsClient baseURL 形如 http://host:port，不带 /api 前缀。
// 不设置请求超时，由底层传输自行决定成功或失败。
func NewNewsClient(baseURL string) *NewsClient {
	return &NewsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// WithHTTPClient 替换底层 http.Client，主要给测试和需要代理的场景使用
func (c *NewsClient) WithHTTPClient(hc *http.Client) *NewsClient {
	dup := *c
	dup.http = hc
	return &dup
}

// FetchByCategories 拉取按分类、按天分组的新闻快照
func (c *NewsClient) FetchByCategories(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.getJSON(ctx, "/api/get_news_by_categories", &snap); err != nil {
		return nil, fmt.Errorf("news: fetch categories: %w", err)
	}
	if strings.TrimSpace(snap.LastUpdated) == "" {
		return nil, fmt.Errorf("news: fetch categories: %w", ErrMissingTimestamp)
	}
	if snap.Categories == nil {
		snap.Categories = map[string][]DayEntry{}
	}
	return &snap, nil
}

// FetchLatest 拉取合并后的“今日要闻”
func (c *NewsClient) FetchLatest(ctx context.Context) (*BreakingNews, error) {
	var bn BreakingNews
	if err := c.getJSON(ctx, "/api/get_latest_news", &bn); err != nil {
		return nil, fmt.Errorf("news: fetch latest: %w", err)
	}
	return &bn, nil
}

func (c *NewsClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, newsMaxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// statusError 尽量从 {"error": "..."} 里取出后端给的原因
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, newsErrorBodyBytes))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		if payload.Message != "" {
			return fmt.Errorf("unexpected status %d: %s: %s", resp.StatusCode, payload.Error, payload.Message)
		}
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, payload.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}

func sortCategories(m map[string][]DayEntry) []string {
	rank := make(map[string]int, len(knownCategories))
	for i, name := range knownCategories {
		rank[name] = i
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, iok := rank[names[i]]
		rj, jok := rank[names[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}
