package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// YAMLMarker delimits YAML front matter.
const YAMLMarker = "---"

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// YAMLParser handles "---" delimited YAML blocks.
type YAMLParser struct{}

func (YAMLParser) Name() string   { return "yaml" }
func (YAMLParser) Marker() string { return YAMLMarker }

func (YAMLParser) CanHandle(header []byte) bool {
	return hasMarker(header, YAMLMarker)
}

func (p YAMLParser) TryParse(text, sourcePath string) (*FrontMatter, error) {
	b, had, _, err := splitDelimited([]byte(text), YAMLMarker)
	if err != nil {
		return nil, &ParseError{File: sourcePath, Line: 1, Column: 1, Err: err}
	}
	if !had {
		return nil, nil
	}

	fields, err := ParseYAML(b.raw)
	if err != nil {
		perr := &ParseError{File: sourcePath, Err: err}
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			if row, convErr := strconv.Atoi(m[1]); convErr == nil {
				perr.Line = b.startLine + row - 1
			}
		}
		return nil, perr
	}

	return &FrontMatter{
		Marker:     YAMLMarker,
		Parser:     p.Name(),
		Fields:     value.ScopeFromMap(fields),
		BodyOffset: b.bodyOffset,
	}, nil
}

// ParseYAML parses YAML front matter into a map.
// Empty input returns an empty map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
