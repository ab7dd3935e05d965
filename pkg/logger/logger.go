package logger

import (
	"io"
	"os"
	"time"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/rs/zerolog"
)

type Logger struct {
	*zerolog.Logger
}

func New(cfg *config.Config) *Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg.IsDev {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	z := zerolog.New(os.Stdout).With().Timestamp().Str("service", "firstcare-registration").Logger()

	if cfg.IsDev {
		z = z.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	return &Logger{Logger: &z}
}

// NewWriter logs to w; tests pass io.Discard or a buffer.
func NewWriter(w io.Writer) *Logger {
	z := zerolog.New(w).With().Timestamp().Logger()
	return &Logger{Logger: &z}
}

func Nop() *Logger {
	return NewWriter(io.Discard)
}
