// Package router 组装 gin 引擎：中间件、JSON API、Swagger 与页面路由
package router

import (
	"fmt"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/mdblog/config"
	_ "github.com/d60-Lab/mdblog/docs"
	"github.com/d60-Lab/mdblog/internal/api/handler"
	"github.com/d60-Lab/mdblog/internal/api/middleware"
	"github.com/d60-Lab/mdblog/internal/web"
)

// Setup 构建路由；写接口（API 与编辑器提交）共用同一个按客户端 IP 的限流器。
// 只有 server.trusted_proxies 中的代理可以通过 X-Forwarded-For 指定客户端 IP。
func Setup(cfg *config.Config, h *handler.Handler, pages *web.Pages) (*gin.Engine, error) {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("server.trusted_proxies: %w", err)
	}
	r.Use(gin.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger/"})))

	writeLimit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		writeLimit = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware()
	}

	r.GET("/health", h.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		posts := v1.Group("/posts")
		posts.GET("", h.ListPosts)
		posts.GET("/:id", h.GetPost)
		posts.POST("", writeLimit, h.CreatePost)
	}

	r.SetHTMLTemplate(web.Templates())
	r.GET("/", pages.Index)
	r.GET("/posts/:id", pages.Show)
	r.GET("/editor", pages.Editor)
	r.POST("/editor", writeLimit, pages.Submit)
	r.POST("/editor/preview", pages.Preview)

	return r, nil
}
