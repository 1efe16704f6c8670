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

// Package elf parses a built ELF image into a name-addressed Program: the
// set of symbols a build produces, each carrying both its ROM offset (where
// its bytes live in the image) and its RAM address (where the loader will
// place it on the target).
package elf

import (
	"debug/elf"
	"fmt"

	"github.com/jetsetilly/hotload/herrors"
	"github.com/jetsetilly/hotload/logger"
)

// Item is a single named, patchable region of the image: a function or a
// piece of data, with both its ROM and RAM coordinates.
//
// Content is an offset/length pair into the Program's retained image bytes,
// not a borrowed slice — the Program and its image are always replaced
// together, so there is nothing for an Item to outlive.
type Item struct {
	Name        string
	SectionName string
	RAMAddr     uint64
	ROMAddr     uint64

	offset       int
	length       int
	sectionIndex int
}

// NewItem constructs an Item directly, without going through Parse. Mainly
// useful in tests that want to exercise diff/patch against hand-built
// Programs without constructing a real ELF image.
func NewItem(name, sectionName string, ramAddr, romAddr uint64, offset, length int) Item {
	return Item{
		Name:        name,
		SectionName: sectionName,
		RAMAddr:     ramAddr,
		ROMAddr:     romAddr,
		offset:      offset,
		length:      length,
	}
}

// Content returns the Item's bytes, sliced from the Program's image.
func (it Item) Content(image []byte) []byte {
	return image[it.offset : it.offset+it.length]
}

// Size is the length of the Item's content in bytes.
func (it Item) Size() int {
	return it.length
}

// Equal reports whether two Items are structurally equal: same section,
// same addresses, and identical content bytes (read from their respective
// images, which may differ).
func (it Item) Equal(other Item, image, otherImage []byte) bool {
	if it.SectionName != other.SectionName {
		return false
	}
	if it.RAMAddr != other.RAMAddr || it.ROMAddr != other.ROMAddr {
		return false
	}
	if it.length != other.length {
		return false
	}
	a, b := it.Content(image), other.Content(otherImage)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Program is the name-keyed collection of Items derived from one ELF image.
// A Program is immutable once constructed and carries the image bytes it
// was parsed from: Parse retains the slice it is given, without copying it.
type Program struct {
	Image []byte
	Items map[string]Item
}

// reservedSection reports whether idx is one of the section indices that
// §4.1 requires excluding: UNDEF, ABS, COMMON, or any processor/reserved
// range.
func reservedSection(idx elf.SectionIndex) bool {
	switch idx {
	case elf.SHN_UNDEF, elf.SHN_ABS, elf.SHN_COMMON:
		return true
	}
	if idx >= elf.SHN_LORESERVE {
		return true
	}
	return false
}

// Parse decodes image as an ELF file and derives a Program from its symbol
// table. A single parse error is returned on any structural problem; no
// partial Program is ever returned.
func Parse(image []byte) (*Program, error) {
	f, err := elf.NewFile(newReaderAt(image))
	if err != nil {
		return nil, herrors.Errorf(herrors.ParseError, "elf: %v", err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, herrors.Errorf(herrors.ParseError, "elf: reading symbol table: %v", err)
	}

	prog := &Program{
		Image: image,
		Items: make(map[string]Item),
	}

	for _, sym := range syms {
		if reservedSection(sym.Section) {
			continue
		}
		if sym.Size == 0 {
			continue
		}
		if sym.Name == "" {
			logger.Log("elf", "skipping unnamed symbol")
			continue
		}
		if int(sym.Section) >= len(f.Sections) {
			return nil, herrors.Errorf(herrors.ParseError, "elf: symbol %q has out-of-range section index %d", sym.Name, sym.Section)
		}

		sec := f.Sections[sym.Section]

		if sym.Value < sec.Addr {
			return nil, herrors.Errorf(herrors.ParseError, "elf: symbol %q value underflows section base", sym.Name)
		}
		symOffset := sym.Value - sec.Addr
		romAddr := sec.Offset + symOffset
		size := sym.Size

		if romAddr > uint64(len(image)) || size > uint64(len(image))-romAddr {
			return nil, herrors.Errorf(herrors.ParseError, "elf: symbol %q content exceeds image bounds", sym.Name)
		}

		it := Item{
			Name:         sym.Name,
			SectionName:  sec.Name,
			RAMAddr:      sym.Value,
			ROMAddr:      romAddr,
			offset:       int(romAddr),
			length:       int(size),
			sectionIndex: int(sym.Section),
		}

		if existing, ok := prog.Items[sym.Name]; ok {
			if existing.sectionIndex <= it.sectionIndex {
				logger.Logf("elf", "duplicate symbol %q: keeping earlier definition (lower section index), discarding one in section %d", sym.Name, it.sectionIndex)
				continue
			}
			logger.Logf("elf", "duplicate symbol %q: definition in section %d has lower section index, discarding previous one", sym.Name, it.sectionIndex)
		}

		prog.Items[sym.Name] = it
	}

	return prog, nil
}

// readerAt adapts a byte slice to io.ReaderAt, as required by elf.NewFile.
type readerAt struct {
	b []byte
}

func newReaderAt(b []byte) *readerAt {
	return &readerAt{b: b}
}

func (r *readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.b)) {
		return 0, fmt.Errorf("elf: read offset %d out of range", off)
	}
	n := copy(p, r.b[off:])
	if n < len(p) {
		return n, fmt.Errorf("elf: short read at offset %d", off)
	}
	return n, nil
}
