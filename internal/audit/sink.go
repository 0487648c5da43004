// Package audit provides the sink a decoding session writes its formatted
// PKT/CMD/RSP trail to: a rotated file plus the console. Structured copies
// for the HTTP read API are persisted separately, from the typed
// escpos.Command/response values in internal/session, not by re-parsing
// these lines.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/btb36/escpos-emulator/internal/config"
)

// isoMillisEncoder renders a time.Time as ISO-8601 with millisecond
// precision, the timestamp format every audit line is prefixed with.
func isoMillisEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000Z07:00"))
}

// FileConsoleSink writes every audit line to a rotated log file and to the
// console, tagged with the owning session ID. It implements escpos.LineSink.
type FileConsoleSink struct {
	logger    *zap.Logger
	sessionID string
}

// NewFileConsoleSink builds a sink rooted at cfg.Output, creating the log
// directory if needed, and also echoing every line to stdout. Grounded on
// internal/utils/logger.go's LoggerManager, adapted to a raw-line encoder
// since PKT/CMD/RSP text is already a fixed, human-readable format rather
// than something worth re-encoding as JSON fields.
func NewFileConsoleSink(cfg *config.LoggingConfig, sessionID string) (*FileConsoleSink, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "ts",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeTime:  isoMillisEncoder,
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	output := cfg.Output
	if output == "" {
		output = "./logs/escpos.log"
	}
	logDir := filepath.Dir(output)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}

	sessionFile := filepath.Join(logDir, fmt.Sprintf("escpos_%s_%s.log", time.Now().Format("20060102_150405"), sessionID))
	lumber := &lumberjack.Logger{
		Filename:   sessionFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	fileCore := zapcore.NewCore(encoder, zapcore.AddSync(lumber), zapcore.DebugLevel)
	consoleCore := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.DebugLevel)

	logger := zap.New(zapcore.NewTee(fileCore, consoleCore)).With(zap.String("session_id", sessionID))

	return &FileConsoleSink{logger: logger, sessionID: sessionID}, nil
}

// NewFileConsoleSinkAtPath builds a sink writing to exactly the given log
// file path plus stdout, for callers that name their own log file instead
// of letting a session ID pick one — cmd/replay's --log flag.
func NewFileConsoleSinkAtPath(logPath string) (*FileConsoleSink, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "ts",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeTime:  isoMillisEncoder,
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create replay log directory: %w", err)
		}
	}

	lumber := &lumberjack.Logger{Filename: logPath, MaxSize: 100, MaxBackups: 3, MaxAge: 28, Compress: true}

	fileCore := zapcore.NewCore(encoder, zapcore.AddSync(lumber), zapcore.DebugLevel)
	consoleCore := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.DebugLevel)

	logger := zap.New(zapcore.NewTee(fileCore, consoleCore))
	return &FileConsoleSink{logger: logger, sessionID: "replay"}, nil
}

// WriteLine satisfies escpos.LineSink.
func (s *FileConsoleSink) WriteLine(line string) {
	s.logger.Info(line)
}

// Close flushes the underlying zap core.
func (s *FileConsoleSink) Close() error {
	return s.logger.Sync()
}
