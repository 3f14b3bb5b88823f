package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type Logger struct{}

// Log is exposed on the config as a drop-in replacement for our old logger
var Log *Logger

func (l *Logger) ZDebug() *zerolog.Event {
	return zlog.Debug()
}

// These functions are provided to reduce refactoring.
func (l *Logger) Debug(msg string, err ...error) {
	if len(err) == 1 {
		zlog.Debug().Err(err[0]).Msg(msg)
		return
	}
	zlog.Debug().Msg(msg)
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	zlog.Debug().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) ZInfo() *zerolog.Event {
	return zlog.Info()
}

func (l *Logger) Info(msg string, err ...error) {
	if len(err) == 1 {
		zlog.Info().Err(err[0]).Msg(msg)
		return
	}
	zlog.Info().Msg(msg)
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	zlog.Info().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, err ...error) {
	if len(err) == 1 {
		zlog.Warn().Err(err[0]).Msg(msg)
		return
	}
	zlog.Warn().Msg(msg)
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	zlog.Warn().Msg(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, err ...error) {
	if len(err) == 1 {
		zlog.Error().Err(err[0]).Msg(msg)
		return
	}
	zlog.Error().Msg(msg)
}

func (l *Logger) Fatal(msg string, err ...error) {
	if len(err) == 1 {
		zlog.Fatal().Err(err[0]).Msg(msg)
		return
	}
	zlog.Fatal().Msg(msg)
}

// DoConfigureLogger points the global logger at stdout and, when logPath is set, appends to that file too.
func DoConfigureLogger(logPath string, logLevel string, prettyLogging bool) error {
	writers := io.MultiWriter(os.Stdout)
	if len(logPath) > 0 {
		file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("error opening log file %s: %w", logPath, err)
		}
		writers = io.MultiWriter(os.Stdout, file)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if prettyLogging {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: writers, TimeFormat: time.RFC3339})
	} else {
		zlog.Logger = zlog.Output(writers)
	}

	zerolog.SetGlobalLevel(ParseLogLevel(logLevel))
	return nil
}

// ParseLogLevel maps a config level to zerolog, defaulting to info.
func ParseLogLevel(logLevel string) zerolog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
