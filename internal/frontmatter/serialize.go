package frontmatter

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/value"
)

// SerializeScope renders parsed front matter fields as YAML (without
// delimiters). Keys keep the scope's order at every level; the newline style
// comes from style and defaults to \n. An empty scope yields no bytes.
func SerializeScope(fields *value.Scope, style Style) ([]byte, error) {
	if fields == nil || fields.Len() == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mappingNode(fields)); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode front matter: %w", err)
	}

	out := buf.Bytes()
	if nl := style.Newline; nl != "" && nl != "\n" {
		out = bytes.ReplaceAll(out, []byte("\n"), []byte(nl))
	}
	return out, nil
}

func mappingNode(s *value.Scope) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		n.Content = append(n.Content, scalar("!!str", k), valueNode(v))
	}
	return n
}

func valueNode(v value.Value) *yaml.Node {
	switch v.Kind() {
	case value.KindString:
		return scalar("!!str", v.Str())
	case value.KindBool:
		return scalar("!!bool", strconv.FormatBool(v.Bool()))
	case value.KindNumber:
		f := v.Num()
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return scalar("!!int", strconv.FormatInt(int64(f), 10))
		}
		return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64))
	case value.KindSequence:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Seq() {
			seq.Content = append(seq.Content, valueNode(item))
		}
		return seq
	case value.KindMapping:
		if v.Map() == nil {
			return &yaml.Node{Kind: yaml.MappingNode}
		}
		return mappingNode(v.Map())
	case value.KindObject:
		return scalar("!!str", fmt.Sprint(v.Obj()))
	default:
		return scalar("!!null", "null")
	}
}

func scalar(tag, s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: s}
}
