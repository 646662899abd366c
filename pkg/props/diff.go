package props

import (
	"fmt"
	"sort"
)

// ChangeKind classifies a single difference between two trees.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRemoved ChangeKind = "removed"
	ChangeUpdated ChangeKind = "updated"
)

// Change describes one differing path between an old and a new props tree.
// It is designed to be serialized to JSON for event streams and demo output.
type Change struct {
	Path string     `json:"path"`
	Kind ChangeKind `json:"kind"`
	From *Value     `json:"from,omitempty"`
	To   *Value     `json:"to,omitempty"`
}

// Diff reports the paths at which new differs from old. Updates always replace
// props wholesale; the diff exists for observability only, so consumers can
// show what a replacement effectively changed. Returns nil when the trees are
// structurally equal. Results are sorted by path.
func Diff(old, new Value) []Change {
	var changes []Change
	changes = diffValue("", old, new, changes)
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	if len(changes) == 0 {
		return nil
	}
	return changes
}

func diffValue(path string, old, new Value, acc []Change) []Change {
	if old.kind != new.kind {
		return append(acc, updated(path, old, new))
	}

	switch old.kind {
	case KindObject:
		for _, name := range old.Fields() {
			childPath := joinPath(path, name)
			oldChild, _ := old.Field(name)
			newChild, ok := new.Field(name)
			if !ok {
				acc = append(acc, Change{Path: childPath, Kind: ChangeRemoved, From: ref(oldChild)})
				continue
			}
			acc = diffValue(childPath, oldChild, newChild, acc)
		}
		for _, name := range new.Fields() {
			if _, ok := old.Field(name); !ok {
				newChild, _ := new.Field(name)
				acc = append(acc, Change{Path: joinPath(path, name), Kind: ChangeAdded, To: ref(newChild)})
			}
		}
		return acc
	case KindArray:
		oldLen, newLen := old.Len(), new.Len()
		for i := 0; i < oldLen && i < newLen; i++ {
			oldElem, _ := old.Index(i)
			newElem, _ := new.Index(i)
			acc = diffValue(indexPath(path, i), oldElem, newElem, acc)
		}
		for i := newLen; i < oldLen; i++ {
			elem, _ := old.Index(i)
			acc = append(acc, Change{Path: indexPath(path, i), Kind: ChangeRemoved, From: ref(elem)})
		}
		for i := oldLen; i < newLen; i++ {
			elem, _ := new.Index(i)
			acc = append(acc, Change{Path: indexPath(path, i), Kind: ChangeAdded, To: ref(elem)})
		}
		return acc
	default:
		if !Equal(old, new) {
			return append(acc, updated(path, old, new))
		}
		return acc
	}
}

func updated(path string, old, new Value) Change {
	return Change{Path: path, Kind: ChangeUpdated, From: ref(old), To: ref(new)}
}

func ref(v Value) *Value {
	clone := v.Clone()
	return &clone
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}

func indexPath(base string, i int) string {
	if base == "" {
		return fmt.Sprintf("[%d]", i)
	}
	return fmt.Sprintf("%s[%d]", base, i)
}
