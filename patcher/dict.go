package patcher

import "github.com/gordonklaus/kiwi/atom"

// ObjectDict returns the dictionary of an object typed as text, such as
// "osc~ 440": the first word is the name and the rest are the arguments.
func ObjectDict(id uint64, text string) atom.Dict {
	words := atom.Parse(text)
	var name atom.Tag
	args := atom.Vector{}
	if len(words) > 0 {
		name = atom.NewTag(atom.Format(words[:1]))
		args = append(args, words[1:]...)
	}
	return atom.Dict{
		atom.Name:      name,
		atom.Text:      atom.NewTag(text),
		atom.ID:        int64(id),
		atom.Arguments: args,
	}
}

// LinkDict returns the dictionary of a link from outlet of the object with
// id from to inlet of the object with id to.
func LinkDict(from uint64, outlet int, to uint64, inlet int) atom.Dict {
	return atom.Dict{
		atom.From: atom.Vector{int64(from), int64(outlet)},
		atom.To:   atom.Vector{int64(to), int64(inlet)},
	}
}
