package config

// Default values applied by applyDefaults.
const (
	DefaultTitle         = "Site"
	DefaultMetaDir       = "_meta"
	DefaultExcludePrefix = "_"
	DefaultOutputDir     = "_site"
)

// DefaultFrontMatter lists the front matter parsers enabled when none are configured.
var DefaultFrontMatter = []string{"toml"}

func applyDefaults(cfg *Config) {
	if cfg.Title == "" {
		cfg.Title = DefaultTitle
	}
	if cfg.MetaDir == "" {
		cfg.MetaDir = DefaultMetaDir
	}
	if cfg.ExcludePrefix == "" {
		cfg.ExcludePrefix = DefaultExcludePrefix
	}
	if cfg.ConfigFilename == "" {
		cfg.ConfigFilename = DefaultFilename
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
	if len(cfg.FrontMatter) == 0 {
		cfg.FrontMatter = append([]string(nil), DefaultFrontMatter...)
	}
}
