package frontmatter

import (
	"fmt"
	"strings"
)

// Parser decodes one flavour of front matter.
type Parser interface {
	// Name is the configuration name of the parser ("toml", "yaml").
	Name() string
	// Marker is the delimiter line that opens and closes the block.
	Marker() string
	// CanHandle reports whether header (the leading bytes of a file) opens with
	// this parser's marker.
	CanHandle(header []byte) bool
	// TryParse decodes the block at the head of text.
	TryParse(text, sourcePath string) (*FrontMatter, error)
}

// Registry is an ordered list of parsers. The first parser whose CanHandle
// accepts a document owns it.
type Registry struct {
	parsers []Parser
}

var builtin = map[string]func() Parser{
	"toml": func() Parser { return TOMLParser{} },
	"yaml": func() Parser { return YAMLParser{} },
}

// DefaultRegistry registers the TOML parser only.
func DefaultRegistry() *Registry {
	return &Registry{parsers: []Parser{TOMLParser{}}}
}

// NewRegistry builds a registry from parser names in the given order.
// Duplicate names are ignored.
func NewRegistry(names ...string) (*Registry, error) {
	r := &Registry{}
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		ctor, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("unknown front matter parser %q", raw)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		r.parsers = append(r.parsers, ctor())
	}
	return r, nil
}

// Register appends p; it is consulted after every parser already registered.
func (r *Registry) Register(p Parser) {
	r.parsers = append(r.parsers, p)
}

// Parsers returns the registered parsers in order.
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.parsers))
	copy(out, r.parsers)
	return out
}

// Markers lists the markers of the registered parsers.
func (r *Registry) Markers() []string {
	out := make([]string, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, p.Marker())
	}
	return out
}

// Parse hands text to the first parser that can handle it. When no parser
// matches it returns (nil, "", nil).
func (r *Registry) Parse(text, sourcePath string) (*FrontMatter, string, error) {
	header := []byte(text)
	for _, p := range r.parsers {
		if !p.CanHandle(header) {
			continue
		}
		fm, err := p.TryParse(text, sourcePath)
		return fm, p.Name(), err
	}
	return nil, "", nil
}
