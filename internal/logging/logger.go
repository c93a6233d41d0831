// Package logging wires the process log sinks: structured JSON lines appended
// to a file plus a human-readable mirror on the console. Sinks are set up once
// by the entry point; components receive named agent loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures the sinks.
type Options struct {
	// LogPath is the JSON lines file. Empty disables the file sink.
	LogPath string
	// Console receives the human-readable stream. Nil disables it.
	Console io.Writer
	Level   zapcore.Level
}

// Logging owns the root logger and the named agent loggers derived from it.
type Logging struct {
	root *zap.Logger
	file *os.File

	mu     sync.Mutex
	agents map[string]*zap.Logger
}

// Setup opens the sinks and builds the root logger.
func Setup(opts Options) (*Logging, error) {
	level := zap.NewAtomicLevelAt(opts.Level)
	var cores []zapcore.Core
	var file *os.File

	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(f), level))
	}
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(opts.Console), level))
	}

	root := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &Logging{root: root, file: file, agents: make(map[string]*zap.Logger)}, nil
}

// Nop returns a Logging that discards everything.
func Nop() *Logging {
	return &Logging{root: zap.NewNop(), agents: make(map[string]*zap.Logger)}
}

// Wrap adopts an existing logger, typically zaptest.NewLogger in tests.
func Wrap(root *zap.Logger) *Logging {
	return &Logging{root: root, agents: make(map[string]*zap.Logger)}
}

// Agent returns the logger for the named agent. Repeated calls with the same
// name return the same logger.
func (l *Logging) Agent(name string) *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lg, ok := l.agents[name]; ok {
		return lg
	}
	lg := l.root.Named(name)
	l.agents[name] = lg
	return lg
}

// Close flushes buffered entries and closes the log file.
func (l *Logging) Close() error {
	_ = l.root.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "agent",
		CallerKey:      "module",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// consoleEncoderConfig renders "time - LEVEL - [agent] - message".
func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		MessageKey:       "M",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05,000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " - ",
		EncodeName: func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString("[" + name + "]")
		},
	}
}
