package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/mdblog/internal/service"
	"github.com/d60-Lab/mdblog/pkg/response"
)

// Pinger 存储连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler 聚合各业务服务的 HTTP 处理器
type Handler struct {
	postService service.PostService
	store       Pinger
}

func New(postService service.PostService, store Pinger) *Handler {
	return &Handler{postService: postService, store: store}
}

// fail 把服务层错误映射为 HTTP 状态；存储错误只返回 msg
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidID):
		response.BadRequest(c, "Invalid post ID")
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, "Post not found")
	default:
		response.ServerError(c, msg, err)
	}
}
