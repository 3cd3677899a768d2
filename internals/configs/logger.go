package configs

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// InitLogger mengatur logrus global dari LOG_LEVEL (default info) dan
// LOG_FORMAT (json|text, default text).
func InitLogger() *logrus.Logger {
	l := logrus.StandardLogger()
	l.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(GetEnv("LOG_FORMAT", "text"), "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	return l
}
