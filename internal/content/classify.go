package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
)

// SniffWindow is the number of leading bytes inspected to classify a file.
const SniffWindow = 16

// TemplateOpener starts a template action.
const TemplateOpener = "{{"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Kind is the classification of a file from its leading bytes.
type Kind int

const (
	KindPlainStatic Kind = iota
	KindBinary
	KindFrontMatterCandidate
)

func (k Kind) String() string {
	switch k {
	case KindPlainStatic:
		return "static"
	case KindBinary:
		return "binary"
	case KindFrontMatterCandidate:
		return "candidate"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classifier decides from a lead buffer whether a file may carry a template.
type Classifier struct {
	openers [][]byte
}

// NewClassifier returns a classifier recognizing the template opener and the
// given front matter markers.
func NewClassifier(markers ...string) *Classifier {
	c := &Classifier{openers: [][]byte{[]byte(TemplateOpener)}}
	for _, m := range markers {
		if m != "" {
			c.openers = append(c.openers, []byte(m))
		}
	}
	return c
}

var defaultClassifier = NewClassifier(frontmatter.TOMLMarker)

// Classify uses the template opener and the TOML front matter marker.
func Classify(lead []byte) Kind {
	return defaultClassifier.Classify(lead)
}

// Classify inspects lead, which may be shorter than SniffWindow. A BOM is
// skipped only when all three of its bytes are present.
func (c *Classifier) Classify(lead []byte) Kind {
	start := 0
	if bytes.HasPrefix(lead, utf8BOM) {
		start = len(utf8BOM)
	}
	rest := lead[start:]

	for _, opener := range c.openers {
		if bytes.HasPrefix(rest, opener) {
			if bytes.IndexByte(rest[len(opener):], 0) >= 0 {
				return KindBinary
			}
			return KindFrontMatterCandidate
		}
	}
	return KindPlainStatic
}

// Sniff reads up to SniffWindow bytes from r, classifies them and rewinds r
// to the start.
func (c *Classifier) Sniff(r io.ReadSeeker) (Kind, error) {
	buf := make([]byte, SniffWindow)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindPlainStatic, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return KindPlainStatic, err
	}
	return c.Classify(buf[:n]), nil
}

// Sniff uses the default classifier.
func Sniff(r io.ReadSeeker) (Kind, error) {
	return defaultClassifier.Sniff(r)
}
