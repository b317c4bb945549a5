package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type loggingMiddleware struct {
	logger *zap.Logger
}

// LoggingMiddleware logs every generation call through zap. Failed replies
// are logged at warn level, everything else at debug.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &loggingMiddleware{logger: logger.Named("llm")}
}

func (l *loggingMiddleware) Name() string {
	return "logging"
}

func (l *loggingMiddleware) BeforeGenerate(_ context.Context, provider Provider, history []Message) {
	l.logger.Debug("generate request",
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.Int("messages", len(history)),
	)
}

func (l *loggingMiddleware) AfterGenerate(_ context.Context, provider Provider, _ []Message, reply string, elapsed time.Duration) {
	fields := []zap.Field{
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.Duration("duration", elapsed),
	}
	if IsErrorReply(reply) {
		l.logger.Warn("generate failed", append(fields, zap.String("error", reply))...)
		return
	}
	l.logger.Debug("generate response", append(fields, zap.Int("reply_bytes", len(reply)))...)
}
