// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides a simple logging interface
type Logger interface {
	Info(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New creates a named logger backed by zap
func New(name string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Named(name).Sugar()}
}

// NewNop returns a logger that discards everything
func NewNop() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *zapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

func (l *zapLogger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}
