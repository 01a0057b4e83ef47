package collector

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const (
	defaultArticleTimeout  = 10 * time.Second
	defaultArticleMaxChars = 2000
	maxArticleChars        = 8000
)

// 标题与正文选择器：优先 VnExpress 的结构，其次通用 article/main
const (
	articleTitleSelector     = "h1.title-detail, article h1, h1"
	articleParagraphSelector = "article.fck_detail p.Normal, article p, main p, div.content p"
	articleLeadSelector      = "p.description"
)

// ErrEmptyArticle 页面里没有解析出任何正文段落
var ErrEmptyArticle = errors.New("article: no readable paragraphs")

// Article 从新闻页提取出的可朗读文本
type Article struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ArticleExtractor 抓取单篇新闻页面，提取标题与正文段落，供 TTS 朗读
type ArticleExtractor struct {
	AllowedDomains []string
	UserAgent      string
	Timeout        time.Duration
}

// NewArticleExtractor 不限制域名；需要收紧时直接设置 AllowedDomains
func NewArticleExtractor() *ArticleExtractor {
	return &ArticleExtractor{
		UserAgent: "NewsVoiceBot/1.0",
		Timeout:   defaultArticleTimeout,
	}
}

// Extract 访问 rawURL 并返回正文；maxChars<=0 时取默认值，上限 8000 个字符
func (x *ArticleExtractor) Extract(rawURL string, maxChars int) (*Article, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, errors.New("article: url is required")
	}
	if maxChars <= 0 || maxChars > maxArticleChars {
		maxChars = defaultArticleMaxChars
	}

	opts := []colly.CollectorOption{colly.UserAgent(x.UserAgent)}
	if len(x.AllowedDomains) > 0 {
		opts = append(opts, colly.AllowedDomains(x.AllowedDomains...))
	}
	c := colly.NewCollector(opts...)
	timeout := x.Timeout
	if timeout <= 0 {
		timeout = defaultArticleTimeout
	}
	c.SetRequestTimeout(timeout)

	out := &Article{URL: rawURL}
	var paragraphs []string
	var visitErr error

	c.OnHTML("html", func(e *colly.HTMLElement) {
		out.Title = strings.TrimSpace(e.DOM.Find(articleTitleSelector).First().Text())

		if lead := strings.TrimSpace(e.DOM.Find(articleLeadSelector).First().Text()); lead != "" {
			paragraphs = append(paragraphs, lead)
		}
		seen := map[string]struct{}{}
		for _, p := range paragraphs {
			seen[p] = struct{}{}
		}
		e.DOM.Find(articleParagraphSelector).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if text == "" {
				return
			}
			if _, dup := seen[text]; dup {
				return
			}
			seen[text] = struct{}{}
			paragraphs = append(paragraphs, text)
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		visitErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(rawURL); err != nil {
		log.Printf("article: visit %s failed: %v", rawURL, err)
		return nil, fmt.Errorf("article: visit: %w", err)
	}
	if visitErr != nil {
		return nil, fmt.Errorf("article: visit: %w", visitErr)
	}

	if len(paragraphs) == 0 {
		return nil, ErrEmptyArticle
	}
	out.Text = clipRunes(strings.Join(paragraphs, "\n"), maxChars)
	return out, nil
}

func clipRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
