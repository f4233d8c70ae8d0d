package atom

import "unique"

// A Tag is an interned name.  Two tags are equal iff their names are equal,
// and comparing them costs a pointer comparison.  The zero Tag is the empty
// name.
type Tag struct {
	h unique.Handle[string]
}

func NewTag(name string) Tag {
	if name == "" {
		return Tag{}
	}
	return Tag{unique.Make(name)}
}

func (t Tag) IsZero() bool { return t == Tag{} }

// Equal reports whether t and u are the same tag.
func (t Tag) Equal(u Tag) bool { return t == u }

func (t Tag) String() string {
	if t.IsZero() {
		return ""
	}
	return t.h.Value()
}

func (t Tag) MarshalYAML() (interface{}, error) { return t.String(), nil }

// Reserved keys of the structural dictionary.
var (
	Name      = NewTag("name")
	Text      = NewTag("text")
	ID        = NewTag("id")
	Arguments = NewTag("arguments")
	Objects   = NewTag("objects")
	Links     = NewTag("links")
	From      = NewTag("from")
	To        = NewTag("to")
	Ninlets   = NewTag("ninlets")
	Noutlets  = NewTag("noutlets")
	Patcher   = NewTag("patcher")
)
