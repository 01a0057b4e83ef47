package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LJTian/NewsVoice/internal/collector"
)

// 一次合成请求里放进去的文本上限（按 rune），与前端编辑器的限制一致
const DefaultReadoutRunes = 5000

// SimpleProcessor 把新闻条目整理成可以直接送去 TTS 的文本
type SimpleProcessor struct {
	MaxRunes int
}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{MaxRunes: DefaultReadoutRunes}
}

// Dedupe 去掉日期与标题都相同的重复条目，保留首次出现的顺序
func (p *SimpleProcessor) Dedupe(entries []collector.DayEntry) []collector.DayEntry {
	out := make([]collector.DayEntry, 0, len(entries))
	seen := make(map[string]struct{})

	for _, e := range entries {
		id := hashKey(e.Date + "\x00" + e.Title)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Readout 拼出一个分类的朗读稿：分类名、每天的标题与内容；超长时按 rune 截断并加省略号
func (p *SimpleProcessor) Readout(category string, entries []collector.DayEntry) string {
	var b strings.Builder
	if category = strings.TrimSpace(category); category != "" {
		b.WriteString(category)
		b.WriteString(".\n\n")
	}
	for _, e := range p.Dedupe(entries) {
		content := strings.TrimSpace(e.Content)
		if content == "" {
			continue
		}
		if title := strings.TrimSpace(e.Title); title != "" {
			b.WriteString(title)
			b.WriteString(".\n")
		}
		// 后端用 \t 作为每篇摘要的缩进，朗读时没有意义
		b.WriteString(strings.ReplaceAll(content, "\t", ""))
		b.WriteString("\n\n")
	}

	limit := p.MaxRunes
	if limit <= 0 {
		limit = DefaultReadoutRunes
	}
	return truncateRunes(strings.TrimSpace(b.String()), limit)
}

// BreakingReadout 今日要闻的朗读稿
func (p *SimpleProcessor) BreakingReadout(bn collector.BreakingNews) string {
	return p.Readout(bn.Title, []collector.DayEntry{{Date: bn.Date, Content: bn.Content}})
}

// Fingerprint 快照内容的指纹；encoding/json 对 map 键排序，结果稳定
func Fingerprint(snap collector.Snapshot) string {
	bs, err := json.Marshal(snap.Categories)
	if err != nil {
		return ""
	}
	return hashKey(string(bs))
}

func hashKey(s string) string {
	h := sha1.New()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// truncateRunes 按 rune 截断，超出时追加省略号
func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
