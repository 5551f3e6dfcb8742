package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogrusLogger is the console logger of the command line tools.
func NewLogrusLogger(env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	switch env {
	case "production":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
