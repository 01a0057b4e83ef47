package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsVoice/internal/poller"
)

type newsPayload struct {
	Categories    any      `json:"categories"`
	CategoryOrder []string `json:"category_order"`
	LastUpdated   string   `json:"last_updated"`
	RecordedAt    string   `json:"recorded_at,omitempty"`
	HasNewContent bool     `json:"has_new_content"`
	InFlight      bool     `json:"in_flight"`
	IntervalSecs  int      `json:"interval_seconds"`
	FromArchive   bool     `json:"from_archive,omitempty"`
}

func toPayload(st poller.Status) newsPayload {
	p := newsPayload{
		Categories:    map[string]any{},
		CategoryOrder: st.Snapshot.CategoryNames(),
		LastUpdated:   st.LastUpdated,
		HasNewContent: st.HasNewContent,
		InFlight:      st.InFlight,
		IntervalSecs:  int(st.Interval.Seconds()),
	}
	if st.Snapshot.Categories != nil {
		p.Categories = st.Snapshot.Categories
	}
	if !st.RecordedAt.IsZero() {
		p.RecordedAt = st.RecordedAt.Format(time.RFC3339)
	}
	return p
}

// news 轮询器还没拿到数据（首次拉取失败或进行中）时回退到最近一次归档
func (s *Server) news(c *gin.Context) {
	st := s.Poller.Status()
	if st.Snapshot.Empty() && s.Archive != nil {
		if snap, err := s.Archive.LatestSnapshot(); err == nil {
			st.Snapshot = *snap
			st.LastUpdated = snap.LastUpdated
			p := toPayload(st)
			p.FromArchive = true
			success(c, p)
			return
		}
	}
	success(c, toPayload(st))
}

// refreshNews 用户确认“有新内容”后拉取并采用最新快照
func (s *Server) refreshNews(c *gin.Context) {
	if s.RefreshLimiter != nil && !s.RefreshLimiter.Allow() {
		fail(c, http.StatusTooManyRequests, "rate_limited", "refresh requested too often")
		return
	}
	s.Poller.RefreshNow(c.Request.Context())
	success(c, toPayload(s.Poller.Status()))
}

func (s *Server) newsVisibility(c *gin.Context) {
	var req struct {
		Visible *bool `json:"visible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Visible == nil {
		fail(c, http.StatusBadRequest, "bad_request", "visible is required")
		return
	}
	s.Poller.SetVisible(*req.Visible)
	success(c, toPayload(s.Poller.Status()))
}

// latestNews 优先读 Redis 缓存，未命中再请求后端并回写
func (s *Server) latestNews(c *gin.Context) {
	ctx := c.Request.Context()
	if s.Archive != nil {
		if bn, hit := s.Archive.Breaking(ctx); hit {
			success(c, bn)
			return
		}
	}
	bn, err := s.News.FetchLatest(ctx)
	if err != nil {
		log.Printf("api: fetch latest news: %v", err)
		fail(c, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	if s.Archive != nil {
		if err := s.Archive.SaveBreaking(ctx, *bn); err != nil {
			log.Printf("api: save breaking news: %v", err)
		}
	}
	success(c, bn)
}

func (s *Server) newsHistory(c *gin.Context) {
	if s.Archive == nil {
		fail(c, http.StatusServiceUnavailable, "unavailable", "archive not configured")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	items, err := s.Archive.ListSnapshots(limit)
	if err != nil {
		log.Printf("api: list snapshots: %v", err)
		fail(c, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	success(c, items)
}

// newsReadout 当前快照中某个分类的朗读稿，不带 category 时读今日要闻
func (s *Server) newsReadout(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		bn, err := s.News.FetchLatest(c.Request.Context())
		if err != nil {
			log.Printf("api: fetch latest news: %v", err)
			fail(c, http.StatusBadGateway, "upstream_error", err.Error())
			return
		}
		success(c, gin.H{"category": bn.Category, "text": s.proc.BreakingReadout(*bn)})
		return
	}

	entries, ok := s.Poller.Status().Snapshot.Categories[category]
	if !ok {
		fail(c, http.StatusNotFound, "not_found", "unknown category: "+category)
		return
	}
	success(c, gin.H{"category": category, "text": s.proc.Readout(category, entries)})
}
