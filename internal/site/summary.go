package site

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MoreMarker ends the summary of a page explicitly.
const MoreMarker = "<!--more-->"

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// ExtractSummary returns the text before MoreMarker, or else the first
// paragraph that is neither empty nor a Markdown heading. Markup is parsed
// as HTML: only text nodes are kept, entities are decoded and whitespace
// collapsed.
func ExtractSummary(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if before, _, found := strings.Cut(text, MoreMarker); found {
		return textContent(before)
	}
	for _, para := range paragraphBreak.Split(text, -1) {
		p := strings.TrimSpace(para)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if summary := textContent(p); summary != "" {
			return summary
		}
	}
	return ""
}

// textContent returns the visible text of an HTML fragment. Comments and the
// bodies of script and style elements are dropped. Block level tags separate
// words; inline tags do not.
func textContent(fragment string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	hidden := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapse(sb.String())
		case html.TextToken:
			if hidden == 0 {
				sb.Write(z.Text())
			}
		case html.StartTagToken:
			tag := tagAtom(z)
			if isHidden(tag) {
				hidden++
			}
			if !inline[tag] {
				sb.WriteByte(' ')
			}
		case html.EndTagToken:
			tag := tagAtom(z)
			if isHidden(tag) && hidden > 0 {
				hidden--
			}
			if !inline[tag] {
				sb.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			if !inline[tagAtom(z)] {
				sb.WriteByte(' ')
			}
		}
	}
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}

func isHidden(a atom.Atom) bool {
	return a == atom.Script || a == atom.Style || a == atom.Template || a == atom.Noscript
}

var inline = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Cite: true, atom.Code: true,
	atom.Em: true, atom.I: true, atom.Kbd: true, atom.Mark: true, atom.Q: true,
	atom.S: true, atom.Small: true, atom.Span: true, atom.Strong: true, atom.Sub: true,
	atom.Sup: true, atom.U: true, atom.Var: true,
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
