// Package atom holds the values exchanged between objects and the structural
// dictionaries that describe patches.
package atom

import (
	"math"
	"strconv"
	"strings"
)

// An Atom is an int64, a float64, a Tag, a Vector or a Dict.  Go integer and
// string values are accepted by the accessors below for convenience.
type Atom = interface{}

type Vector []Atom

// A Dict is a structural dictionary.
type Dict map[Tag]Atom

func Int(a Atom) (int64, bool) {
	switch a := a.(type) {
	case int64:
		return a, true
	case int:
		return int64(a), true
	case int32:
		return int64(a), true
	case uint64:
		return int64(a), true
	case uint:
		return int64(a), true
	case float64:
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return 0, false
		}
		return int64(a), true
	}
	return 0, false
}

func Float(a Atom) (float64, bool) {
	switch a := a.(type) {
	case float64:
		return a, true
	case float32:
		return float64(a), true
	}
	if i, ok := Int(a); ok {
		return float64(i), true
	}
	return 0, false
}

func IsNumber(a Atom) bool {
	_, ok := Float(a)
	return ok
}

func TagOf(a Atom) (Tag, bool) {
	switch a := a.(type) {
	case Tag:
		return a, true
	case string:
		return NewTag(a), true
	}
	return Tag{}, false
}

func VectorOf(a Atom) (Vector, bool) {
	switch a := a.(type) {
	case Vector:
		return a, true
	case []Atom:
		return Vector(a), true
	}
	return nil, false
}

func DictOf(a Atom) (Dict, bool) {
	d, ok := a.(Dict)
	return d, ok
}

// Copy returns a deep copy of d.  Vectors and nested dictionaries are copied;
// other atoms are immutable.
func (d Dict) Copy() Dict {
	if d == nil {
		return nil
	}
	c := make(Dict, len(d))
	for k, v := range d {
		c[k] = copyAtom(v)
	}
	return c
}

func (v Vector) Copy() Vector {
	if v == nil {
		return nil
	}
	c := make(Vector, len(v))
	for i, x := range v {
		c[i] = copyAtom(x)
	}
	return c
}

func copyAtom(a Atom) Atom {
	switch a := a.(type) {
	case Dict:
		return a.Copy()
	case Vector:
		return a.Copy()
	case []Atom:
		return Vector(a).Copy()
	}
	return a
}

// Parse splits text on white space.  Words that read as integers become
// int64s, words that read as numbers become float64s and all others become
// tags.
func Parse(text string) Vector {
	var v Vector
	for _, w := range strings.Fields(text) {
		v = append(v, parseWord(w))
	}
	return v
}

func parseWord(w string) Atom {
	if i, err := strconv.ParseInt(w, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(w, 64); err == nil {
		return f
	}
	return NewTag(w)
}

// Format is the inverse of Parse.
func Format(v Vector) string {
	s := make([]string, len(v))
	for i, a := range v {
		s[i] = formatAtom(a)
	}
	return strings.Join(s, " ")
}

func formatAtom(a Atom) string {
	switch a := a.(type) {
	case float64:
		return strconv.FormatFloat(a, 'g', -1, 64)
	case Tag:
		return a.String()
	case string:
		return a
	case Vector:
		return "[" + Format(a) + "]"
	case Dict:
		return "{...}"
	}
	if i, ok := Int(a); ok {
		return strconv.FormatInt(i, 10)
	}
	return ""
}
