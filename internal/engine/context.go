package engine

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Resolver maps include names to loadable paths.
type Resolver interface {
	// Resolve maps name to a path. A false result means the include is
	// rejected; the resolver has already reported why.
	Resolve(ctx *Context, caller diag.Span, name string) (string, bool)
	// Load returns the text of a resolved path.
	Load(ctx *Context, caller diag.Span, path string) (string, error)
}

// Context is the mutable state of one evaluation. It is not safe for
// concurrent use.
type Context struct {
	// EnableOutput controls whether evaluation output is kept in the buffer.
	EnableOutput bool
	// Resolver serves include; nil rejects every include.
	Resolver Resolver

	scopes       []*value.Scope
	sourceFiles  []string
	output       strings.Builder
	data         map[string]any
	engine       *Engine
	includeDepth int
}

// NewContext returns an empty context with output enabled.
func NewContext() *Context {
	return &Context{EnableOutput: true}
}

// PushGlobal makes s the innermost scope.
func (c *Context) PushGlobal(s *value.Scope) {
	if s == nil {
		panic("engine: PushGlobal called with nil scope")
	}
	c.scopes = append(c.scopes, s)
}

// PopGlobal removes and returns the innermost scope. It panics when the stack is empty.
func (c *Context) PopGlobal() *value.Scope {
	if len(c.scopes) == 0 {
		panic("engine: PopGlobal on empty scope stack")
	}
	s := c.scopes[len(c.scopes)-1]
	c.scopes[len(c.scopes)-1] = nil
	c.scopes = c.scopes[:len(c.scopes)-1]
	return s
}

// CurrentGlobal returns the innermost scope, or nil when none is pushed.
func (c *Context) CurrentGlobal() *value.Scope {
	if len(c.scopes) == 0 {
		return nil
	}
	return c.scopes[len(c.scopes)-1]
}

func (c *Context) GlobalDepth() int { return len(c.scopes) }

// PushSourceFile records path as the file being evaluated.
func (c *Context) PushSourceFile(path string) {
	c.sourceFiles = append(c.sourceFiles, path)
}

// PopSourceFile removes and returns the current source file. It panics when the stack is empty.
func (c *Context) PopSourceFile() string {
	if len(c.sourceFiles) == 0 {
		panic("engine: PopSourceFile on empty source file stack")
	}
	p := c.sourceFiles[len(c.sourceFiles)-1]
	c.sourceFiles = c.sourceFiles[:len(c.sourceFiles)-1]
	return p
}

// CurrentSourceFile returns the innermost source file, or "".
func (c *Context) CurrentSourceFile() string {
	if len(c.sourceFiles) == 0 {
		return ""
	}
	return c.sourceFiles[len(c.sourceFiles)-1]
}

func (c *Context) SourceFileDepth() int { return len(c.sourceFiles) }

// Output returns everything written while EnableOutput was set.
func (c *Context) Output() string { return c.output.String() }

// ResetOutput clears the output buffer.
func (c *Context) ResetOutput() { c.output.Reset() }

// Lookup finds name in the scope stack, innermost first.
func (c *Context) Lookup(name string) (value.Value, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i].Get(name); ok {
			return v, true
		}
	}
	return value.Null, false
}

// flatten builds the template data view: outermost first, innermost wins.
func (c *Context) flatten() map[string]any {
	data := make(map[string]any)
	for _, s := range c.scopes {
		for _, k := range s.Keys() {
			v, _ := s.Get(k)
			data[k] = v.Interface()
		}
	}
	return data
}
