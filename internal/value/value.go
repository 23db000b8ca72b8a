// Package value holds the variable model shared by front matter, scripts and
// templates: a tagged Value union and an ordered Scope of named bindings.
package value

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a tagged union. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	seq  []Value
	m    *Scope
	obj  any
}

var Null = Value{}

func String(s string) Value     { return Value{kind: KindString, str: s} }
func Number(n float64) Value    { return Value{kind: KindNumber, num: n} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Sequence(v ...Value) Value { return Value{kind: KindSequence, seq: v} }

// Mapping wraps a nested scope. A nil scope becomes an empty one.
func Mapping(s *Scope) Value {
	if s == nil {
		s = NewScope()
	}
	return Value{kind: KindMapping, m: s}
}

// Object wraps an opaque reference handed through to templates unchanged.
func Object(o any) Value {
	if o == nil {
		return Null
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) Str() string    { return v.str }
func (v Value) Num() float64   { return v.num }
func (v Value) Bool() bool     { return v.b }
func (v Value) Seq() []Value   { return v.seq }
func (v Value) Map() *Scope    { return v.m }
func (v Value) Obj() any       { return v.obj }

// Of converts decoded TOML/YAML or template data into a Value.
func Of(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Number(float64(t))
	case int8:
		return Number(float64(t))
	case int16:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []Value:
		return Sequence(t...)
	case []any:
		seq := make([]Value, len(t))
		for i, e := range t {
			seq[i] = Of(e)
		}
		return Sequence(seq...)
	case []string:
		seq := make([]Value, len(t))
		for i, e := range t {
			seq[i] = String(e)
		}
		return Sequence(seq...)
	case *Scope:
		return Mapping(t)
	case map[string]any:
		return Mapping(ScopeFromMap(t))
	case map[any]any:
		s := NewScope()
		for _, k := range sortedAnyKeys(t) {
			_ = s.Set(fmt.Sprint(k), Of(t[k]))
		}
		return Mapping(s)
	case time.Time:
		return Object(t)
	default:
		rv := reflect.ValueOf(x)
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Uint8 {
			seq := make([]Value, rv.Len())
			for i := range seq {
				seq[i] = Of(rv.Index(i).Interface())
			}
			return Sequence(seq...)
		}
		return Object(x)
	}
}

// Interface converts v back into plain Go data for template execution.
// Whole numbers come back as int so templates print "3" rather than "3e+00".
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int(v.num)
		}
		return v.num
	case KindBool:
		return v.b
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Interface()
		}
		return out
	case KindMapping:
		return v.m.Map()
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// String renders v for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(v.str)
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Equal reports deep equality. Objects compare with ==.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(o.m)
	default:
		return v.obj == o.obj
	}
}
