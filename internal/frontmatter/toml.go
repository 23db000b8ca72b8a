package frontmatter

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// TOMLMarker delimits TOML front matter.
const TOMLMarker = "+++"

// TOMLParser handles "+++" delimited TOML blocks.
type TOMLParser struct{}

func (TOMLParser) Name() string   { return "toml" }
func (TOMLParser) Marker() string { return TOMLMarker }

func (TOMLParser) CanHandle(header []byte) bool {
	return hasMarker(header, TOMLMarker)
}

func (p TOMLParser) TryParse(text, sourcePath string) (*FrontMatter, error) {
	b, had, _, err := splitDelimited([]byte(text), TOMLMarker)
	if err != nil {
		return nil, &ParseError{File: sourcePath, Line: 1, Column: 1, Err: err}
	}
	if !had {
		return nil, nil
	}

	fields := map[string]any{}
	if err := toml.Unmarshal(b.raw, &fields); err != nil {
		perr := &ParseError{File: sourcePath, Err: fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			perr.Line = b.startLine + row - 1
			perr.Column = col
		}
		return nil, perr
	}

	return &FrontMatter{
		Marker:     TOMLMarker,
		Parser:     p.Name(),
		Fields:     value.ScopeFromMap(fields),
		BodyOffset: b.bodyOffset,
	}, nil
}
