// Package errors classifies the errors that end a sitebuilder command.
//
// Content and script problems are recorded as diagnostics, not returned. What
// remains (configuration, usage, filesystem, and the aggregate "the site
// recorded errors" signal) is reported as a ClassifiedError whose category
// selects the process exit code:
//
//	err := errors.ConfigError("unknown front matter parser").
//		WithContext("name", name).
//		Build()
package errors
