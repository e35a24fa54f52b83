package push

import (
	"context"

	"go.uber.org/zap"

	"github.com/riverwatchhq/riverwatch/pkg/logger"
	"github.com/riverwatchhq/riverwatch/pkg/metrics"
)

// LogSender writes notifications to the log instead of a gateway. It backs
// deployments that have no push credentials yet and local development.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender returns a sender that only logs.
func NewLogSender() *LogSender {
	return &LogSender{log: logger.WithModule("push.log")}
}

// Send records the notification at info level and reports success.
func (s *LogSender) Send(_ context.Context, token, title, body string, data map[string]string) error {
	fields := []zap.Field{
		zap.String("token", truncateToken(token)),
		zap.String("title", title),
		zap.String("body", body),
	}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}
	s.log.Info("push notification", fields...)
	metrics.PushSends.WithLabelValues("ok").Inc()
	return nil
}

// truncateToken keeps logs free of full device tokens.
func truncateToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
