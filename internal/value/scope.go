package value

import (
	"errors"
	"fmt"
	"sort"
)

// ErrReadOnly is returned when assigning to a read-only binding.
var ErrReadOnly = errors.New("variable is read-only")

type binding struct {
	val      Value
	readOnly bool
}

// Scope is an ordered mapping from variable name to Value. Keys keep their
// first insertion position; Remove drops the position.
type Scope struct {
	keys []string
	vars map[string]binding
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{vars: make(map[string]binding)}
}

// ScopeFromMap builds a scope from m with keys in sorted order.
func ScopeFromMap(m map[string]any) *Scope {
	s := NewScope()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_ = s.Set(k, Of(m[k]))
	}
	return s
}

// Set assigns name. It fails with ErrReadOnly when the existing binding is read-only.
func (s *Scope) Set(name string, v Value) error {
	return s.set(name, v, false, false)
}

// SetReadOnly assigns name and marks it read-only. With force an existing
// read-only binding is replaced.
func (s *Scope) SetReadOnly(name string, v Value, force bool) error {
	return s.set(name, v, true, force)
}

func (s *Scope) set(name string, v Value, readOnly, force bool) error {
	if s.vars == nil {
		s.vars = make(map[string]binding)
	}
	if cur, ok := s.vars[name]; ok {
		if cur.readOnly && !force {
			return fmt.Errorf("%w: %s", ErrReadOnly, name)
		}
	} else {
		s.keys = append(s.keys, name)
	}
	s.vars[name] = binding{val: v, readOnly: readOnly}
	return nil
}

// Get returns the value bound to name.
func (s *Scope) Get(name string) (Value, bool) {
	if s == nil {
		return Null, false
	}
	b, ok := s.vars[name]
	return b.val, ok
}

// Has reports whether name is bound.
func (s *Scope) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// IsReadOnly reports whether name is bound read-only.
func (s *Scope) IsReadOnly(name string) bool {
	if s == nil {
		return false
	}
	return s.vars[name].readOnly
}

// Remove unbinds name regardless of its read-only state.
func (s *Scope) Remove(name string) bool {
	if s == nil {
		return false
	}
	if _, ok := s.vars[name]; !ok {
		return false
	}
	delete(s.vars, name)
	for i, k := range s.keys {
		if k == name {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the bound names in insertion order.
func (s *Scope) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of bindings.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Map converts the scope into plain Go data.
func (s *Scope) Map() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for _, k := range s.keys {
		out[k] = s.vars[k].val.Interface()
	}
	return out
}

// Equal compares bindings irrespective of order.
func (s *Scope) Equal(o *Scope) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, k := range s.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		sv, _ := s.Get(k)
		if !sv.Equal(ov) {
			return false
		}
	}
	return true
}

func sortedAnyKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
	return keys
}
