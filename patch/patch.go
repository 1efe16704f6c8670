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

// Package patch validates a diff edit list against the hotload patcher's
// preconditions and issues the corresponding memory writes over a gdb
// client.
package patch

import (
	"github.com/jetsetilly/hotload/diff"
	"github.com/jetsetilly/hotload/elf"
	"github.com/jetsetilly/hotload/herrors"
)

// Writer is the subset of gdb.Client that Apply needs, so tests can supply
// a fake without opening a socket.
type Writer interface {
	WriteMemory(address uint64, data []byte) error
}

// Apply applies entries to target in order, via a single write_memory per
// eligible Changed entry. image must be the new Program's image, since
// Changed entries write New's content. It returns on the first unsupported
// or I/O error with the remainder unapplied; there is no rollback of writes
// already issued.
func Apply(target Writer, image []byte, entries []diff.Entry) error {
	for _, e := range entries {
		if err := applyOne(target, image, e); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(target Writer, image []byte, e diff.Entry) error {
	switch e.Kind {
	case diff.Added:
		return herrors.Errorf(herrors.Unsupported, "patch: %q was added, cannot allocate in target", e.Name)
	case diff.Removed:
		return herrors.Errorf(herrors.Unsupported, "patch: %q was removed, cannot free in target", e.Name)
	case diff.Changed:
		return applyChanged(target, image, e)
	default:
		return herrors.Errorf(herrors.Unsupported, "patch: %q has unrecognised edit kind", e.Name)
	}
}

func applyChanged(target Writer, image []byte, e diff.Entry) error {
	if e.Old.Size() != e.New.Size() {
		return herrors.Errorf(herrors.Unsupported, "patch: %q changed size, no relocation supported", e.Name)
	}
	if e.Old.RAMAddr != e.New.RAMAddr {
		return herrors.Errorf(herrors.Unsupported, "patch: %q changed RAM address, no move supported", e.Name)
	}
	if e.Old.SectionName != e.New.SectionName {
		return herrors.Errorf(herrors.Unsupported, "patch: %q changed section, no overlay/segment migration supported", e.Name)
	}

	content := contentOf(e.New, image)
	if err := target.WriteMemory(e.Old.RAMAddr, content); err != nil {
		return err
	}
	return nil
}

func contentOf(it elf.Item, image []byte) []byte {
	return it.Content(image)
}
