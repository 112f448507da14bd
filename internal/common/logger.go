package common

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerParams struct {
	Level       string
	FileName    string
	ToStdout    bool
	FormatJSON  bool
	Environment string
}

// NewLogger builds the application logger. Without a file name logs go to stdout only,
// otherwise to a rotating file and, if requested, stdout as well.
func NewLogger(params LoggerParams) *slog.Logger {
	var out io.Writer = os.Stdout

	if params.FileName != "" {
		if !strings.HasSuffix(params.FileName, ".log") {
			params.FileName += ".log"
		}

		rotating := &lumberjack.Logger{
			Filename:   params.FileName,
			MaxSize:    50, // megabytes
			MaxBackups: 10,
			Compress:   true,
		}

		out = rotating
		if params.ToStdout {
			out = io.MultiWriter(os.Stdout, rotating)
		}
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(params.Level)}

	var handler slog.Handler
	if params.FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if params.Environment != "" {
		logger = logger.With(slog.String("env", params.Environment))
	}

	return logger
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
