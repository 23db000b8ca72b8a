package engine

import (
	"fmt"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// Func is a function exposed to templates through a scope binding. Bind it
// with value.Object(engine.Func(...)) under a name declared with WithFuncs.
type Func func(ctx *Context, args ...any) (any, error)

func (e *Engine) placeholders() template.FuncMap {
	noop := func(...any) (any, error) { return nil, nil }
	funcs := template.FuncMap{
		"set":     func(string, any) (string, error) { return "", nil },
		"get":     func(string) (any, error) { return nil, nil },
		"has":     func(string) bool { return false },
		"include": func(string) (string, error) { return "", nil },
	}
	for _, name := range e.declared {
		funcs[name] = noop
	}
	return funcs
}

func (e *Engine) bind(ctx *Context) template.FuncMap {
	funcs := template.FuncMap{
		"set": func(name string, v any) (string, error) {
			return "", ctx.set(name, v)
		},
		"get": func(name string) (any, error) {
			v, ok := ctx.Lookup(name)
			if !ok {
				return "", nil
			}
			return v.Interface(), nil
		},
		"has": func(name string) bool {
			_, ok := ctx.Lookup(name)
			return ok
		},
		"include": ctx.include,
	}
	for _, name := range e.declared {
		funcs[name] = func(args ...any) (any, error) {
			return ctx.call(name, args)
		}
	}
	return funcs
}

func (c *Context) set(name string, v any) error {
	top := c.CurrentGlobal()
	if top == nil {
		return &Fault{Span: diag.FileSpan(c.CurrentSourceFile()), Reason: "no scope to assign " + name}
	}
	val := value.Of(v)
	if err := top.Set(name, val); err != nil {
		return &Fault{Span: diag.FileSpan(c.CurrentSourceFile()), Reason: err.Error(), Err: err}
	}
	if c.data != nil {
		c.data[name] = val.Interface()
	}
	return nil
}

func (c *Context) call(name string, args []any) (any, error) {
	v, ok := c.Lookup(name)
	if ok && v.Kind() == value.KindObject {
		if fn, isFunc := v.Obj().(Func); isFunc {
			return fn(c, args...)
		}
	}
	return nil, &Fault{
		Span:   diag.FileSpan(c.CurrentSourceFile()),
		Reason: fmt.Sprintf("function %s is not available in this context", name),
	}
}

func (c *Context) include(name string) (string, error) {
	caller := diag.FileSpan(c.CurrentSourceFile())
	if c.Resolver == nil {
		return "", nil
	}
	path, ok := c.Resolver.Resolve(c, caller, name)
	if !ok {
		return "", nil
	}
	if c.includeDepth >= c.engine.maxIncludeDepth {
		return "", &Fault{Span: caller, Reason: fmt.Sprintf("include depth exceeded %d while including %s", c.engine.maxIncludeDepth, name)}
	}

	text, err := c.Resolver.Load(c, caller, path)
	if err != nil {
		return "", &Fault{Span: caller, Reason: fmt.Sprintf("unable to load include %s: %v", name, err), Err: err}
	}

	parsed := c.engine.Parse(text, path, ParseOptions{Mode: ModeDefault})
	if parsed.HasErrors {
		return "", &Fault{
			Span:           caller,
			Reason:         "error while parsing include " + strings.TrimSpace(name),
			ParserMessages: parsed.Messages,
		}
	}

	c.PushSourceFile(path)
	c.includeDepth++
	defer func() {
		c.includeDepth--
		c.PopSourceFile()
	}()

	var buf strings.Builder
	if err := c.engine.execute(parsed.Unit, c, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
