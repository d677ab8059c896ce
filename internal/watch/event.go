package watch

import "strings"

// Op describes the kind of change reported for a path. Multiple bits may be
// set on a single event.
type Op uint32

// Change kinds.
const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Has reports whether op contains all bits of other.
func (op Op) Has(other Op) bool {
	return other != 0 && op&other == other
}

func (op Op) String() string {
	var parts []string

	for _, k := range []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	} {
		if op.Has(k.op) {
			parts = append(parts, k.name)
		}
	}

	if len(parts) == 0 {
		return "NONE"
	}

	return strings.Join(parts, "|")
}

// Event is a single filesystem change notification.
type Event struct {
	// Path is the changed entry as reported by the source.
	Path string
	// Op is the kind of change.
	Op Op
}
