package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/LJTian/NewsVoice/internal/audio"
	"github.com/LJTian/NewsVoice/internal/auth"
	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/notify"
	"github.com/LJTian/NewsVoice/internal/poller"
	"github.com/LJTian/NewsVoice/internal/processor"
	"github.com/LJTian/NewsVoice/internal/storage"
	"github.com/LJTian/NewsVoice/internal/tts"
)

// NewsPoller 网关持有的轮询器，由 *poller.Poller 实现
type NewsPoller interface {
	Status() poller.Status
	RefreshNow(ctx context.Context)
	SetVisible(visible bool)
}

// Archive 归档与要闻缓存，未配置数据库时为 nil
type Archive interface {
	ListSnapshots(limit int) ([]storage.SnapshotRecord, error)
	LatestSnapshot() (*collector.Snapshot, error)
	LastTimestamp(ctx context.Context) (string, bool)
	Breaking(ctx context.Context) (*collector.BreakingNews, bool)
	SaveBreaking(ctx context.Context, bn collector.BreakingNews) error
}

type ArticleExtractor interface {
	Extract(rawURL string, maxChars int) (*collector.Article, error)
}

type Deps struct {
	Poller   NewsPoller
	News     collector.Fetcher
	Archive  Archive
	Auth     auth.Authenticator
	TTS      *tts.Client
	Audio    *audio.Client
	Articles ArticleExtractor
	Toasts   *notify.Center

	// 手动刷新限流，nil 表示不限
	RefreshLimiter *rate.Limiter
}

type Server struct {
	Deps
	proc *processor.SimpleProcessor
}

func NewServer(d Deps) *Server {
	return &Server{Deps: d, proc: processor.NewSimpleProcessor()}
}

// DefaultRefreshLimiter 每 10 秒一次，允许突发 3 次
func DefaultRefreshLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(10*time.Second), 3)
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/session", s.session)
		api.GET("/tts/options", s.ttsOptions)
	}

	authed := api.Group("", s.requireSession())
	{
		authed.GET("/news", s.news)
		authed.POST("/news/refresh", s.refreshNews)
		authed.POST("/news/visibility", s.newsVisibility)
		authed.GET("/news/latest", s.latestNews)
		authed.GET("/news/history", s.newsHistory)
		authed.GET("/news/readout", s.newsReadout)
		authed.GET("/events", s.events)

		authed.POST("/tts/synthesize", requireRole(auth.PolicyTTS...), s.synthesize)
		authed.POST("/article/extract", s.extractArticle)

		tools := authed.Group("/audio", requireRole(auth.PolicyAudioTools...))
		{
			tools.POST("/netspeech", s.netSpeech)
			tools.POST("/snr", s.snr)
			tools.POST("/converter", s.convert)
		}
		authed.POST("/audio/generate", requireRole(auth.PolicyVoiceClone...), s.clone)
	}
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{"status": "ok", "poller_running": s.Poller.Status().Running}
	if s.Archive != nil {
		if ts, ok := s.Archive.LastTimestamp(c.Request.Context()); ok {
			resp["last_updated"] = ts
		}
	}
	c.JSON(http.StatusOK, resp)
}

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
