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

package elf_test

import (
	stdelf "debug/elf"
	"testing"

	"github.com/jetsetilly/hotload/elf"
	"github.com/jetsetilly/hotload/test"
)

func TestParse_RoundTripAndAddressConsistency(t *testing.T) {
	image, textOff := buildFixture(0x80010000, []testSymbol{
		{name: "foo", section: 1, content: []byte{0, 0, 0, 0}},
	})

	prog, err := elf.Parse(image)
	test.ExpectSuccess(t, err)

	it, ok := prog.Items["foo"]
	test.ExpectSuccess(t, ok)

	test.ExpectEquality(t, it.RAMAddr, uint64(0x80010000))
	test.ExpectEquality(t, it.ROMAddr, uint64(textOff))
	test.ExpectEquality(t, it.Content(prog.Image), []byte{0, 0, 0, 0})

	// address consistency: ram_addr - section_base_addr == rom_addr - section_base_offset
	test.ExpectEquality(t, it.RAMAddr-0x80010000, it.ROMAddr-uint64(textOff))
}

func TestParse_EmptySymbolExcluded(t *testing.T) {
	image, _ := buildFixture(0x80010000, []testSymbol{
		{name: "foo", section: 1, content: []byte{}},
		{name: "bar", section: 1, content: []byte{1, 2, 3, 4}},
	})

	prog, err := elf.Parse(image)
	test.ExpectSuccess(t, err)

	_, ok := prog.Items["foo"]
	test.ExpectFailure(t, ok)

	_, ok = prog.Items["bar"]
	test.ExpectSuccess(t, ok)
}

func TestParse_ReservedSectionExcluded(t *testing.T) {
	image, _ := buildFixture(0x80010000, []testSymbol{
		{name: "foo", section: int(stdelf.SHN_ABS), content: []byte{1, 2, 3, 4}},
		{name: "bar", section: 1, content: []byte{1, 2, 3, 4}},
	})

	prog, err := elf.Parse(image)
	test.ExpectSuccess(t, err)

	_, ok := prog.Items["foo"]
	test.ExpectFailure(t, ok)

	_, ok = prog.Items["bar"]
	test.ExpectSuccess(t, ok)
}

func TestParse_MultipleSymbolsAtDistinctOffsets(t *testing.T) {
	image, _ := buildFixture(0x80010000, []testSymbol{
		{name: "foo", section: 1, content: []byte{0x00, 0x00, 0x00, 0x00}},
		{name: "bar", section: 1, content: []byte{0xAA, 0xAA, 0xAA, 0xAA}},
	})

	prog, err := elf.Parse(image)
	test.ExpectSuccess(t, err)

	foo, ok := prog.Items["foo"]
	test.ExpectSuccess(t, ok)
	bar, ok := prog.Items["bar"]
	test.ExpectSuccess(t, ok)

	test.ExpectInequality(t, foo.ROMAddr, bar.ROMAddr)
	test.ExpectEquality(t, foo.Content(prog.Image), []byte{0x00, 0x00, 0x00, 0x00})
	test.ExpectEquality(t, bar.Content(prog.Image), []byte{0xAA, 0xAA, 0xAA, 0xAA})
}
