// Package logger wires zap for the server and the sweep binary.
package logger

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string
	Environment string
	ServiceName string
}

type contextKey string

const (
	loggerKey  contextKey = "logger"
	localsKey             = "logger"
	requestKey            = "requestid"
)

var log = zap.NewNop()

// Init builds the global logger. Production gets JSON output, everything else
// the colored console encoder.
func Init(cfg LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	if cfg.Environment == "production" {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build(zap.Fields(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, err
	}

	log = l
	zap.ReplaceGlobals(l)
	return l, nil
}

// Get returns the global logger instance
func Get() *zap.Logger {
	return log
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return log
}

// FromFiber returns the request-scoped logger set by Middleware.
func FromFiber(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(localsKey).(*zap.Logger); ok {
		return l
	}
	return log
}

// Middleware attaches a request-scoped logger and logs every request after it
// has been handled. It expects Fiber's requestid middleware to run first.
func Middleware(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLogger := base
		if rid, ok := c.Locals(requestKey).(string); ok && rid != "" {
			reqLogger = base.With(zap.String("request_id", rid))
		}
		c.Locals(localsKey, reqLogger)
		c.SetUserContext(WithContext(c.UserContext(), reqLogger))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		reqLogger.Info("HTTP Request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		)
		return err
	}
}
