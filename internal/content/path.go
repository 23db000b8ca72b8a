package content

import (
	"cmp"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath converts a root relative path to its canonical form: slash
// separated, NFC normalized and cleaned, without a leading "./" or "/".
func NormalizePath(rel string) string {
	p := norm.NFC.String(filepath.ToSlash(rel))
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// Less orders paths naturally: segment by segment, with runs of digits
// compared by numeric value and everything else compared bytewise.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Compare is the three-way form of Less.
func Compare(a, b string) int {
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareSegment(as[i], bs[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(as), len(bs))
}

func compareSegment(a, b string) int {
	for a != "" && b != "" {
		ca, restA := chunk(a)
		cb, restB := chunk(b)
		if c := compareChunk(ca, cb); c != 0 {
			return c
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// chunk splits s after its leading run of digits or non-digits.
func chunk(s string) (string, string) {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareChunk(a, b string) int {
	if isDigit(a[0]) && isDigit(b[0]) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			return cmp.Compare(len(ta), len(tb))
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		// Equal values: fewer leading zeros first.
		return cmp.Compare(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
