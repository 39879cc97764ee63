package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Lumberjack implements log file rotation
var writer io.Writer

func init() {
	logDir, err := os.UserCacheDir()
	if err != nil {
		logDir = os.TempDir()
	}

	writer = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "remap", "logs.db"),
		MaxSize:    64, // Megabytes
		MaxBackups: 1,
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	level := zerolog.InfoLevel
	if os.Getenv("REMAP_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

type Ctx map[string]any

type Logger struct {
	zero      zerolog.Logger
	namespace string
}

func New(namespace string) Logger {
	return Logger{
		zero:      log.Output(writer),
		namespace: namespace,
	}
}

func (l *Logger) Debug(msg string, ctx Ctx) {
	l.zero.Debug().Str("namespace", l.namespace).Interface("data", ctx).Msg(msg)
	log.Debug().Fields(map[string]any(ctx)).Msg(msg)
}

func (l *Logger) Info(msg string, ctx Ctx) {
	l.zero.Info().Str("namespace", l.namespace).Interface("data", ctx).Msg(msg)
	log.Info().Fields(map[string]any(ctx)).Msg(msg)
}

func (l *Logger) Print(msg string, ctx Ctx) {
	l.zero.Info().Str("namespace", l.namespace).Interface("data", ctx).Msg(msg)
	log.Info().Fields(map[string]any(ctx)).Msg(msg)
}

func (l *Logger) Warn(msg string, ctx Ctx) {
	l.zero.Warn().Str("namespace", l.namespace).Interface("data", ctx).Msg(msg)
	log.Warn().Fields(map[string]any(ctx)).Msg(msg)
}

func (l *Logger) Err(e error, msg string, ctx Ctx) {
	l.zero.Err(e).Str("namespace", l.namespace).Interface("data", ctx).Msg(msg)
	log.Warn().Fields(map[string]any(ctx)).Msg(msg)
}
