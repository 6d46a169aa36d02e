// Package response 统一的 JSON 响应辅助函数
package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/pkg/logger"
)

// Response 错误响应体
type Response struct {
	Error string `json:"error"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Response{Error: msg})
}

func BadRequest(c *gin.Context, msg string) { Fail(c, http.StatusBadRequest, msg) }

func NotFound(c *gin.Context, msg string) { Fail(c, http.StatusNotFound, msg) }

func ServiceUnavailable(c *gin.Context, msg string) { Fail(c, http.StatusServiceUnavailable, msg) }

// ServerError 记录并上报 err，对客户端只返回 msg
func ServerError(c *gin.Context, msg string, err error) {
	if err != nil {
		_ = c.Error(err)
		logger.Error(msg,
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path))
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	Fail(c, http.StatusInternalServerError, msg)
}
