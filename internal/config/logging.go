package config

import (
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(LogLevelInfo,
	LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError).
	WithAlias("warning", LogLevelWarn)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// SlogLevel maps the level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(LogFormatText, LogFormatJSON, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// FrontMatterParser enumerates the built-in front matter parsers.
type FrontMatterParser string

const (
	FrontMatterTOML FrontMatterParser = "toml"
	FrontMatterYAML FrontMatterParser = "yaml"
)

var frontMatterNormalizer = normalization.NewNormalizer(FrontMatterTOML, FrontMatterTOML, FrontMatterYAML).
	WithAlias("yml", FrontMatterYAML)

// normalize case-folds enumerations. Unknown front matter names are kept so
// Validate can report them.
func normalize(cfg *Config) {
	if cfg.Logging.Level != "" {
		cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	}
	if cfg.Logging.Format != "" {
		cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	}
	for i, name := range cfg.FrontMatter {
		if p, ok := frontMatterNormalizer.Lookup(name); ok {
			cfg.FrontMatter[i] = string(p)
		}
	}
}
