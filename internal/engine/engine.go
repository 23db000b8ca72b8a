package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/sitebuilder/internal/diag"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// Mode selects how a text is parsed and what its evaluation produces.
type Mode int

const (
	// ModeDefault parses the whole text as a template body.
	ModeDefault Mode = iota
	// ModeFrontMatterAndContent expects an optional front matter block
	// followed by a body; callers split the block before parsing the body.
	ModeFrontMatterAndContent
	// ModeScriptOnly parses a script; the trimmed output of an evaluation is
	// its result.
	ModeScriptOnly
	// ModeFrontMatterOnly parses front matter without a body.
	ModeFrontMatterOnly
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeFrontMatterAndContent:
		return "frontmatter+content"
	case ModeScriptOnly:
		return "script"
	case ModeFrontMatterOnly:
		return "frontmatter"
	default:
		return "unknown"
	}
}

// DefaultMaxIncludeDepth bounds nested include expansion.
const DefaultMaxIncludeDepth = 32

// ParseOptions controls Engine.Parse.
type ParseOptions struct {
	Mode Mode
	// StartOffset is the byte offset in text where the body begins. Lines
	// reported in diagnostics are relative to the full text.
	StartOffset int
	// FrontMatterMarker records the marker that preceded the body, if any.
	FrontMatterMarker string
}

// Unit is a parsed template ready for evaluation.
type Unit struct {
	Path string
	Mode Mode

	tpl        *template.Template
	lineOffset int
	marker     string
}

// FrontMatterMarker returns the marker of the front matter the unit's body followed.
func (u *Unit) FrontMatterMarker() string { return u.marker }

// Parsed is the result of Engine.Parse.
type Parsed struct {
	HasErrors   bool
	Messages    []diag.Message
	Unit        *Unit
	FrontMatter *frontmatter.FrontMatter
}

// Engine parses and evaluates templates. The zero value is not usable; call New.
type Engine struct {
	declared        []string
	maxIncludeDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithFuncs declares additional function names. Their implementation is
// looked up in the context's scope stack at call time.
func WithFuncs(names ...string) Option {
	return func(e *Engine) {
		e.declared = append(e.declared, names...)
	}
}

// WithMaxIncludeDepth overrides DefaultMaxIncludeDepth.
func WithMaxIncludeDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIncludeDepth = n
		}
	}
}

// New returns an engine with the built-in functions.
func New(opts ...Option) *Engine {
	e := &Engine{maxIncludeDepth: DefaultMaxIncludeDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse parses text[opts.StartOffset:] as a template named path. It never
// panics on malformed input; failures are reported as messages.
//
// Referencing an undefined variable faults at evaluation. get and has look
// names up without faulting.
func (e *Engine) Parse(text, path string, opts ParseOptions) *Parsed {
	start := opts.StartOffset
	if start < 0 || start > len(text) {
		start = 0
	}
	lineOffset := strings.Count(text[:start], "\n")

	tpl, err := template.New(path).
		Option("missingkey=error").
		Funcs(e.placeholders()).
		Parse(text[start:])
	if err != nil {
		return &Parsed{
			HasErrors: true,
			Messages:  []diag.Message{messageFromError(err, path, lineOffset)},
		}
	}

	return &Parsed{
		Unit: &Unit{
			Path:       path,
			Mode:       opts.Mode,
			tpl:        tpl,
			lineOffset: lineOffset,
			marker:     opts.FrontMatterMarker,
		},
	}
}

// Evaluate executes unit against ctx and returns what it produced. When
// ctx.EnableOutput is set the output is also appended to the context buffer.
// For script units the returned string is trimmed.
//
// A failure is returned as a *Fault.
func (e *Engine) Evaluate(unit *Unit, ctx *Context) (string, error) {
	if unit == nil {
		panic("engine: Evaluate called with nil unit")
	}
	if ctx == nil {
		panic("engine: Evaluate called with nil context")
	}

	prevEngine := ctx.engine
	ctx.engine = e
	defer func() { ctx.engine = prevEngine }()

	topLevel := ctx.data == nil
	if topLevel {
		ctx.data = ctx.flatten()
		defer func() { ctx.data = nil }()
	}

	var buf bytes.Buffer
	if err := e.execute(unit, ctx, &buf); err != nil {
		return "", err
	}

	out := buf.String()
	if ctx.EnableOutput {
		ctx.output.WriteString(out)
	}
	if unit.Mode == ModeScriptOnly {
		out = strings.TrimSpace(out)
	}
	return out, nil
}

func (e *Engine) execute(unit *Unit, ctx *Context, w io.Writer) error {
	tpl := unit.tpl.Funcs(e.bind(ctx))
	if err := tpl.Execute(w, ctx.data); err != nil {
		span, reason := spanFromError(err, unit.Path, unit.lineOffset)
		var fault *Fault
		if errors.As(err, &fault) {
			if fault.Span.Line == 0 {
				fault.Span = span
			}
			return fault
		}
		return &Fault{Span: span, Reason: reason, Err: err}
	}
	return nil
}
