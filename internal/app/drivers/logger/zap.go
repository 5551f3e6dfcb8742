package logger

import (
	"hospital-service/internal/app/config"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func NewZapLogger(driverConfig *config.DriverConfig, internalConfig *config.InternalConfig) *zap.Logger {
	var logLevel zapcore.Level
	switch driverConfig.Logger.Level {
	case "debug":
		logLevel = zap.DebugLevel
	case "info":
		logLevel = zap.InfoLevel
	case "warn":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zap.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	level := zap.NewAtomicLevelAt(logLevel)

	var core zapcore.Core
	switch internalConfig.App.Env {
	case "production":
		output := zapcore.AddSync(newRotatingFile(driverConfig, driverConfig.Logger.OutputFileName))
		errorOutput := zapcore.NewMultiWriteSyncer(
			zapcore.Lock(os.Stderr),
			zapcore.AddSync(newRotatingFile(driverConfig, driverConfig.Logger.OutputErrorFileName)),
		)
		jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)
		core = zapcore.NewTee(
			zapcore.NewCore(jsonEncoder, output, level),
			zapcore.NewCore(jsonEncoder, errorOutput, zap.ErrorLevel),
		)
	default:
		consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
		core = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)
	}

	options := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)}
	if internalConfig.App.Env == "development" {
		options = append(options, zap.Development())
	}

	return zap.New(core, options...)
}

func newRotatingFile(driverConfig *config.DriverConfig, filename string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    driverConfig.Logger.MaxSizeInMegabyte,
		MaxBackups: driverConfig.Logger.MaxBackups,
		MaxAge:     driverConfig.Logger.MaxAgeInDays,
		Compress:   true,
	}
}
