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

// Package graphdump writes an on-demand graphviz dump of the currently
// loaded Program, via bradleyjkemp/memviz. Purely a diagnostic aid: nothing
// in the core pipeline depends on it.
package graphdump

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/jetsetilly/hotload/elf"
)

// Dump writes a graphviz representation of prog's Items to w. Intended to
// be triggered from the console on a keypress, or once at startup when
// diagnosing a patch that keeps getting rejected as Unsupported.
func Dump(w io.Writer, prog *elf.Program) error {
	memviz.Map(w, prog)
	return nil
}
