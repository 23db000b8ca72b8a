// Package scripts evaluates content and site scripts against a managed stack
// of scopes, and resolves the include files those scripts may reference.
//
// Every Manager entry point (Import, Evaluate, RunFrontMatter) pushes what it
// needs onto the shared engine context and pops it again, in reverse order,
// on every exit path. Failures are recorded through the diag.Aggregator and
// reported to the caller as a false result; they are never returned as Go
// errors.
package scripts
