// Package monitor 错误上报（Sentry）
package monitor

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/mdblog/config"
)

// InitSentry DSN 为空时返回 false，不做任何初始化
func InitSentry(cfg config.SentryConfig, release string) (bool, error) {
	if cfg.DSN == "" {
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		EnableTracing:    cfg.TracesSampleRate > 0,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return false, fmt.Errorf("init sentry: %w", err)
	}
	return true, nil
}

// Flush 等待事件发送完毕
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
