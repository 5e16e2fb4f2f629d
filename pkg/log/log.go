// Package log 提供基于 zerolog 的日志工具，支持 stderr 和文件输出（lumberjack 轮转）.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/docshelf/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
	mu       sync.RWMutex
	closer   io.Closer
)

// Init 使用全局配置初始化 logger（幂等）.
func Init() {
	initOnce.Do(func() {
		cfg := configs.GetConfig()
		setup(cfg.Log, cfg.Server.Debug)
	})
}

// Setup 按给定配置重建全局 logger，可重复调用.
func Setup(logCfg configs.LogConfig, debug bool) {
	initOnce.Do(func() {})
	setup(logCfg, debug)
}

func setup(logCfg configs.LogConfig, debug bool) {
	level := logCfg.Level
	if level == "" {
		level = configs.DefaultLogLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", logCfg.Level)

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	// always add stderr as default human-friendly output, set TimeFormat to time.Kitchen
	writers := []io.Writer{zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = time.Kitchen
	})}

	var lj *lumberjack.Logger

	if logCfg.EnableFile && logCfg.FilePath != "" {
		lj = &lumberjack.Logger{
			Filename:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		}
		writers = append(writers, lj)
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With()
	if debug {
		ctx = ctx.Caller()

		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	mu.Lock()
	if closer != nil {
		_ = closer.Close()
	}

	closer = nil
	if lj != nil {
		closer = lj
	}

	logger = ctx.Timestamp().Str("app", configs.AppName).Logger()
	log.Logger = logger
	mu.Unlock()
}

// Use 替换全局 logger，测试中用于静默或捕获输出.
func Use(l zerolog.Logger) {
	initOnce.Do(func() {})

	mu.Lock()
	logger = l
	log.Logger = l
	mu.Unlock()
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	// ensure logger is initialized on first use
	Init()

	mu.RLock()
	l := logger
	mu.RUnlock()

	return &l
}

// Ctx 返回带有追踪上下文（trace_id、span_id）的 logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()

	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return l
	}

	traced := l.With().
		Str("trace_id", span.SpanContext().TraceID().String()).
		Str("span_id", span.SpanContext().SpanID().String()).
		Logger()

	return &traced
}

// Close 关闭文件输出.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if closer == nil {
		return nil
	}

	err := closer.Close()
	closer = nil

	return err
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

// NewGinWriter 创建 GinWriter.
func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	case zerolog.DebugLevel, zerolog.TraceLevel:
		w.logger.Debug().Msg(msg)
	default:
		w.logger.Info().Msg(msg)
	}

	return len(p), nil
}
