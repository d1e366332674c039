// Package logger provides the package-level structured logger every
// analysis package logs through. One line per orchestration pass, one line
// per failure — never per-transaction (spec.md §6.3).
package logger

import (
	"io"
	"os"

	"performa/internal/config"

	"github.com/sirupsen/logrus"
)

var log *logrus.Logger

// Init configures the package-level logger from cfg. Safe to call more
// than once (e.g. in tests); the previous logger is discarded.
func Init(cfg config.LogConfig) {
	log = logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	default:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	switch cfg.Output {
	case "file":
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.SetOutput(os.Stdout)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, file))
		}
	default:
		log.SetOutput(os.Stdout)
	}
}

func ensure() *logrus.Logger {
	if log == nil {
		Init(config.LogConfig{Level: "info", Format: "text", Output: "stdout"})
	}
	return log
}

func Debug(args ...interface{}) { ensure().Debug(args...) }
func Debugf(format string, args ...interface{}) { ensure().Debugf(format, args...) }
func Info(args ...interface{}) { ensure().Info(args...) }
func Infof(format string, args ...interface{}) { ensure().Infof(format, args...) }
func Warn(args ...interface{}) { ensure().Warn(args...) }
func Warnf(format string, args ...interface{}) { ensure().Warnf(format, args...) }
func Error(args ...interface{}) { ensure().Error(args...) }
func Errorf(format string, args ...interface{}) { ensure().Errorf(format, args...) }
func Fatal(args ...interface{}) { ensure().Fatal(args...) }
func Fatalf(format string, args ...interface{}) { ensure().Fatalf(format, args...) }

// WithField returns a log entry carrying one structured field, e.g.
// logger.WithField("pass", 2).Info("posted records")
func WithField(key string, value interface{}) *logrus.Entry {
	return ensure().WithField(key, value)
}

// WithFields returns a log entry carrying several structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return ensure().WithFields(fields)
}
