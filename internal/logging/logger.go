package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// InitLogger installs a tint handler on stdout as the default logger. Colors
// are dropped when stdout is not a terminal so container logs stay readable.
func InitLogger(level slog.Level) {
	slog.SetDefault(NewLogger(os.Stdout, level))
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    noColor,
	}))
}
