// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

// Package diff computes the edit set between two elf.Programs: which named
// items were added, removed, or changed.
package diff

import "github.com/jetsetilly/hotload/elf"

// Kind tags the variant of an Entry.
type Kind int

const (
	Added Kind = iota
	Removed
	Changed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Entry is a single edit: an item present only in the new Program (Added),
// only in the old Program (Removed), or in both but unequal (Changed). Old
// and New hold the zero Item when not applicable to Kind.
type Entry struct {
	Kind Kind
	Name string
	Old  elf.Item
	New  elf.Item
}

// Compute returns the unordered edit list between old and new: every name
// present in exactly one of the two Programs, plus every name present in
// both whose Items differ. Callers must not depend on result order.
func Compute(old, new *elf.Program) []Entry {
	var entries []Entry

	for name, oldItem := range old.Items {
		newItem, ok := new.Items[name]
		if !ok {
			entries = append(entries, Entry{Kind: Removed, Name: name, Old: oldItem})
			continue
		}
		if !oldItem.Equal(newItem, old.Image, new.Image) {
			entries = append(entries, Entry{Kind: Changed, Name: name, Old: oldItem, New: newItem})
		}
	}

	for name, newItem := range new.Items {
		if _, ok := old.Items[name]; !ok {
			entries = append(entries, Entry{Kind: Added, Name: name, New: newItem})
		}
	}

	return entries
}
