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
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// testSymbol describes one symbol to embed in a fixture ELF image.
type testSymbol struct {
	name    string
	section int // st_shndx written for the symbol: 1 is .text, 0 is SHN_UNDEF
	value   uint32
	content []byte
}

// buildFixture assembles a minimal, well-formed big-endian ELF32/MIPS image
// with a .text section holding the concatenated content of every symbol,
// plus symtab/strtab/shstrtab, and returns the raw bytes together with the
// section's file offset (so a test can predict rom addresses without
// re-deriving them from the bytes; the ram address is textAddr).
//
// All symbols' content is placed in a single .text section, back to back in
// the order given, so each symbol's section-relative offset is the total
// content length of the symbols before it.
func buildFixture(textAddr uint32, symbols []testSymbol) (image []byte, textOffset uint32) {
	const (
		ehsize    = 52
		shentsize = 40
		symsize   = 16
	)

	var text bytes.Buffer
	offsets := make([]uint32, len(symbols))
	for i, s := range symbols {
		offsets[i] = uint32(text.Len())
		text.Write(s.content)
	}
	textBytes := text.Bytes()

	// string tables: index 0 is always the empty string in ELF
	shstrtab := []byte{0}
	shstrtab = append(shstrtab, ".text\x00.symtab\x00.strtab\x00.shstrtab\x00"...)
	nameOff := func(tab []byte, name string) uint32 {
		idx := bytes.Index(tab, append([]byte(name), 0))
		return uint32(idx)
	}

	strtab := []byte{0}
	symNameOff := make([]uint32, len(symbols))
	for i, s := range symbols {
		symNameOff[i] = uint32(len(strtab))
		strtab = append(strtab, append([]byte(s.name), 0)...)
	}

	var symtab bytes.Buffer
	// null symbol at index 0
	binary.Write(&symtab, binary.BigEndian, elf.Sym32{})
	for i, s := range symbols {
		sym := elf.Sym32{
			Name:  symNameOff[i],
			Value: textAddr + offsets[i],
			Size:  uint32(len(s.content)),
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_OBJECT),
			Other: 0,
			Shndx: uint16(s.section),
		}
		binary.Write(&symtab, binary.BigEndian, sym)
	}

	// layout: header | text | symtab | strtab | shstrtab | section headers
	textOff := uint32(ehsize)
	symtabOff := textOff + uint32(len(textBytes))
	strtabOff := symtabOff + uint32(symtab.Len())
	shstrtabOff := strtabOff + uint32(len(strtab))
	shoff := shstrtabOff + uint32(len(shstrtab))

	var buf bytes.Buffer

	hdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_MIPS),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shoff,
		Ehsize:    ehsize,
		Shentsize: shentsize,
		Shnum:     5, // null, .text, .symtab, .strtab, .shstrtab
		Shstrndx:  4,
	}
	copy(hdr.Ident[:], []byte{0x7f, 'E', 'L', 'F'})
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	binary.Write(&buf, binary.BigEndian, hdr)
	buf.Write(textBytes)
	buf.Write(symtab.Bytes())
	buf.Write(strtab)
	buf.Write(shstrtab)

	sections := []elf.Section32{
		{}, // SHN_UNDEF
		{
			Name: nameOff(shstrtab, ".text"), Type: uint32(elf.SHT_PROGBITS),
			Flags: uint32(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Addr:  textAddr, Off: textOff, Size: uint32(len(textBytes)),
		},
		{
			Name: nameOff(shstrtab, ".symtab"), Type: uint32(elf.SHT_SYMTAB),
			Off: symtabOff, Size: uint32(symtab.Len()),
			Link: 3, Entsize: symsize,
		},
		{
			Name: nameOff(shstrtab, ".strtab"), Type: uint32(elf.SHT_STRTAB),
			Off: strtabOff, Size: uint32(len(strtab)),
		},
		{
			Name: nameOff(shstrtab, ".shstrtab"), Type: uint32(elf.SHT_STRTAB),
			Off: shstrtabOff, Size: uint32(len(shstrtab)),
		},
	}
	for _, sec := range sections {
		binary.Write(&buf, binary.BigEndian, sec)
	}

	return buf.Bytes(), textOff
}
