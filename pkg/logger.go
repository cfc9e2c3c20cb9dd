package chain

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the process logger: console (or JSON lines) on stderr,
// teed to a rotating file when conf.File is set.
func NewLogger(conf LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Level)
	if err != nil || conf.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if !conf.JSON {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	}
	if conf.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			Compress:   true,
		})
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
