package collector

import (
	"context"
	"errors"
)

// DayEntry 某个分类下某一天的汇总条目（后端已把当天最多 5 篇摘要合并到 content）
type DayEntry struct {
	Date         string `json:"date"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	ArticleCount int    `json:"article_count"`
}

// Snapshot 新闻服务一次返回的完整分组数据。
// 只会被整体替换，任何一方都不应修改其中的 map 或切片。
type Snapshot struct {
	Categories  map[string][]DayEntry `json:"categories"`
	LastUpdated string                `json:"last_updated"`
}

// Empty 没有任何分类数据
func (s Snapshot) Empty() bool {
	return len(s.Categories) == 0
}

// CategoryNames 按固定顺序返回分类名，已知分类在前，其余按字典序
func (s Snapshot) CategoryNames() []string {
	return sortCategories(s.Categories)
}

// BreakingNews get_latest_news 返回的“今日要闻”合并条目
type BreakingNews struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// ErrMissingTimestamp 返回体缺少 last_updated，视为格式错误
var ErrMissingTimestamp = errors.New("missing last_updated")

// Fetcher 抽象新闻服务，轮询器、定时任务和测试都只依赖这个接口
type Fetcher interface {
	FetchByCategories(ctx context.Context) (*Snapshot, error)
	FetchLatest(ctx context.Context) (*BreakingNews, error)
}
