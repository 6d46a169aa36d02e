package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/pkg/logger"
	"github.com/d60-Lab/mdblog/pkg/response"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health 存储可用时返回 ok
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} healthResponse
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		logger.Warn("health check failed", zap.Error(err))
		response.ServiceUnavailable(c, "storage unavailable")
		return
	}
	response.Success(c, healthResponse{Status: "ok"})
}
