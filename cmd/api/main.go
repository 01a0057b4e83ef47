package main

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LJTian/NewsVoice/internal/api"
	"github.com/LJTian/NewsVoice/internal/audio"
	"github.com/LJTian/NewsVoice/internal/auth"
	"github.com/LJTian/NewsVoice/internal/collector"
	"github.com/LJTian/NewsVoice/internal/config"
	"github.com/LJTian/NewsVoice/internal/notify"
	"github.com/LJTian/NewsVoice/internal/poller"
	"github.com/LJTian/NewsVoice/internal/scheduler"
	"github.com/LJTian/NewsVoice/internal/storage"
	"github.com/LJTian/NewsVoice/internal/tts"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 数据库不可用时网关照常代理，只是没有归档和要闻缓存
	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Printf("warn: init store failed, archive disabled: %v", err)
		store = nil
	}

	news := collector.NewNewsClient(cfg.BackendURL)
	toasts := notify.NewCenter()

	p := poller.New(news, poller.Options{
		Clock: poller.SystemClock(cfg.Location()),
		OnAdopt: func(snap collector.Snapshot) {
			if store == nil {
				return
			}
			if _, err := store.ArchiveSnapshot(snap, time.Now()); err != nil {
				log.Printf("poller: archive snapshot %s: %v", snap.LastUpdated, err)
			}
			if err := store.SaveTimestamp(context.Background(), snap.LastUpdated); err != nil {
				log.Printf("poller: save timestamp: %v", err)
			}
		},
		OnNewContent: func(lastUpdated string) {
			log.Printf("poller: new content available (last_updated=%s)", lastUpdated)
			toasts.Show("New news available", notify.Info, 0)
		},
	})
	// 首次拉取是同步的，放到后台避免阻塞端口监听
	go p.Start(ctx)
	defer p.Stop()

	deps := api.Deps{
		Poller:         p,
		News:           news,
		Auth:           auth.NewClient(cfg.BackendURL),
		TTS:            tts.NewClient(cfg.BackendURL),
		Audio:          audio.NewClient(cfg.BackendURL),
		Articles:       collector.NewArticleExtractor(),
		Toasts:         toasts,
		RefreshLimiter: api.DefaultRefreshLimiter(),
	}

	if store != nil {
		deps.Archive = store
		s, err := scheduler.New(
			scheduler.BreakingNewsJob(cfg.BreakingCron, news, store),
			scheduler.SnapshotArchiveJob(cfg.BreakingCron, news, store),
			scheduler.CleanupJob(cfg.CleanupCron, store, cfg.ArchiveRetention, nil),
		)
		if err != nil {
			log.Fatalf("init scheduler failed: %v", err)
		}
		s.Start()
		defer func() { <-s.Stop().Done() }()
	}

	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	api.NewServer(deps).RegisterRoutes(r)

	// 若配置了前端目录，则托管 SPA 静态文件并做 fallback
	if cfg.WebRoot != "" {
		assetsDir := filepath.Join(cfg.WebRoot, "assets")
		indexFile := filepath.Join(cfg.WebRoot, "index.html")
		r.Static("/assets", assetsDir)
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(indexFile)
		})
	}

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		log.Printf("starting api server at %s ...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server exit: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用，/health 不做认证。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
