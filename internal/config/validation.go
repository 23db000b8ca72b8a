package config

import (
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate checks the configuration. Failures are classified as config errors.
func (c *Config) Validate() error {
	if c.ExcludePrefix == "" {
		return ferrors.ConfigError("exclude_prefix must not be empty").Build()
	}
	if err := validateRelativeDir("meta_dir", c.MetaDir); err != nil {
		return err
	}
	if strings.ContainsAny(c.ConfigFilename, `/\`) {
		return ferrors.ConfigError("config_filename must be a file name").
			WithContext("config_filename", c.ConfigFilename).
			Build()
	}
	for i, theme := range c.Themes {
		if strings.TrimSpace(theme) == "" {
			return ferrors.ConfigError("theme entries must not be empty").
				WithContext("index", i).
				Build()
		}
	}
	for _, name := range c.FrontMatter {
		if _, err := frontMatterNormalizer.NormalizeWithError(name); err != nil || name == "" {
			return ferrors.ConfigError("unknown front matter parser").
				WithContext("front_matter", name).
				WithContext("valid", frontMatterNormalizer.ValidKeys()).
				Build()
		}
	}
	if c.Output.Directory == "" {
		return ferrors.ConfigError("output.directory must not be empty").Build()
	}
	return nil
}

func validateRelativeDir(field, dir string) error {
	if dir == "" || filepath.IsAbs(dir) || strings.Contains(dir, "..") {
		return ferrors.ConfigError(field + " must be a relative directory name").
			WithContext(field, dir).
			Build()
	}
	return nil
}

// ThemeRoots resolves the configured themes against siteRoot.
func (c *Config) ThemeRoots(siteRoot string) []string {
	roots := make([]string, 0, len(c.Themes))
	for _, theme := range c.Themes {
		roots = append(roots, resolve(siteRoot, theme))
	}
	return roots
}

// BuiltinRoot resolves BuiltinDir against siteRoot, or returns "".
func (c *Config) BuiltinRoot(siteRoot string) string {
	if c.BuiltinDir == "" {
		return ""
	}
	return resolve(siteRoot, c.BuiltinDir)
}

// OutputRoot resolves the output directory against siteRoot.
func (c *Config) OutputRoot(siteRoot string) string {
	return resolve(siteRoot, c.Output.Directory)
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
