package api

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

const keepAliveEvery = 25 * time.Second

// events 以 SSE 推送提示消息；连接建立时先补发当前仍在显示的提示
func (s *Server) events(c *gin.Context) {
	ch, cancel := s.Toasts.Subscribe()
	defer cancel()

	for _, t := range s.Toasts.Active() {
		c.SSEvent("toast", t)
	}
	c.Writer.Flush()

	ping := time.NewTicker(keepAliveEvery)
	defer ping.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case t, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("toast", t)
			return true
		case <-ping.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
