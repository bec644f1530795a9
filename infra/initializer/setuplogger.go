package initializer

import (
	"log/slog"
	"os"

	"github.com/amirasaad/speibank/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	okColor    = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	alertColor = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	failColor  = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF6B6B"}
	traceColor = lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#7E57C2"}
)

// highlightedKeys are the attributes an operator greps for when chasing a
// wire through the log stream.
var highlightedKeys = map[string]lipgloss.AdaptiveColor{
	"error":         failColor,
	"reason":        failColor,
	"tracking_code": okColor,
	"account_id":    okColor,
	"clabe":         okColor,
	"amount":        alertColor,
	"refunded":      alertColor,
	"prefix":        traceColor,
	"caller":        traceColor,
	"time":          traceColor,
}

var formatters = map[string]log.Formatter{
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
	"text":   log.TextFormatter,
}

// SetupLogger builds the process logger and installs it as the slog default.
func SetupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05", Prefix: "[speibank]"}
	}

	formatter, ok := formatters[cfg.Format]
	if !ok {
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(logStyles())

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}

func logStyles() *log.Styles {
	styles := log.DefaultStyles()
	styles.Levels[log.ErrorLevel] = levelStyle("❌", failColor)
	styles.Levels[log.WarnLevel] = levelStyle("⚠️", alertColor)
	styles.Levels[log.InfoLevel] = levelStyle("ℹ️", okColor)
	styles.Levels[log.DebugLevel] = levelStyle("🐛", traceColor)

	for key, color := range highlightedKeys {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(color)
		styles.Values[key] = lipgloss.NewStyle().Bold(true)
	}
	return styles
}

func levelStyle(glyph string, color lipgloss.AdaptiveColor) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(glyph).
		Bold(true).
		Padding(0, 1).
		Foreground(color)
}
