package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"taskapi/internal/config"
)

// New builds the application logger. The level follows the environment unless
// cfg.Log.Level is set; LOG_FILE adds a rotated file next to stdout.
func New(cfg *config.Config) (zerolog.Logger, error) {
	zerolog.TimestampFieldName = "timestamp"

	level, err := levelFor(cfg.Env, cfg.Log.Level)
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = os.Stdout
	if cfg.Env == config.EnvLocal {
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		w = consoleWriter
	}

	if cfg.Log.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
			Compress:   true,
		}
		w = zerolog.MultiLevelWriter(w, fileWriter)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger(), nil
}

func levelFor(env, override string) (zerolog.Level, error) {
	if override != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(override))
		if err != nil {
			return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", override, err)
		}
		return level, nil
	}

	switch env {
	case config.EnvLocal:
		return zerolog.TraceLevel, nil
	case config.EnvDev:
		return zerolog.DebugLevel, nil
	case config.EnvProd:
		return zerolog.InfoLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown env: %s", env)
	}
}
