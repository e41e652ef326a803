// Package logger はslogのデフォルトロガーを設定します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config はログ出力設定です。
type Config struct {
	Level string // debug / info / warn / error
	File  string // ローテーション付きログファイル。空ならstdoutのみ
}

// LoadConfigFromEnv は LOG_LEVEL と LOG_FILE を読み込みます。
func LoadConfigFromEnv() Config {
	return Config{
		Level: os.Getenv("LOG_LEVEL"),
		File:  os.Getenv("LOG_FILE"),
	}
}

// ParseLevel はレベル名をslog.Levelに変換します。不明な値はInfoです。
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は stdout と（設定されていれば）ローテーションファイルに書き込むロガーを作成します。
// 返される io.Closer はログファイルを閉じます。ファイルがない場合は何もしません。
func New(cfg Config, stdout io.Writer) (*slog.Logger, io.Closer) {
	w := stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    25, // MB
			MaxBackups: 10,
			MaxAge:     14, // days
			Compress:   true,
		}
		w = io.MultiWriter(stdout, lj)
		closer = lj
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(cfg.Level)})
	return slog.New(h), closer
}

// Setup は console に書き込むロガーをデフォルトに設定します。
// 標準出力を結果の表示に使うCLIは os.Stderr を渡します。
func Setup(cfg Config, console io.Writer) io.Closer {
	l, closer := New(cfg, console)
	slog.SetDefault(l)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
