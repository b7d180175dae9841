package logging

import (
	"io"
	"log/slog"
	"os"
)

func New() *slog.Logger {
	return NewWithWriter(os.Stdout, slog.LevelInfo)
}

// テストやdev用に出力先とレベルを変える
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h)
}
