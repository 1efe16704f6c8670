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

// Package logger implements a small in-memory log used throughout hotload:
// the supervisor, gdb client and elf parser write tagged entries to it
// rather than to stderr directly, so the whole history can be written out
// or tailed from one place (Write, Tail).
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jetsetilly/hotload/assert"
)

// Permission gates whether a caller is allowed to add entries to the log.
// Most callers should just use the Allow sentinel; the interface exists so
// that callers with their own enable/disable state (e.g. a config flag for
// verbose gdb wire tracing) can decide per-call without the logger needing
// to know about them.
type Permission interface {
	AllowLogging() bool
}

type allowAll struct{}

func (allowAll) AllowLogging() bool { return true }

// Allow is the zero-overhead Permission that always allows logging.
var Allow = allowAll{}

// Entry is a single tagged log line.
type Entry struct {
	Tag    string
	Detail string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s: %s", e.Tag, e.Detail)
}

// Logger is a fixed-capacity ring of Entries. The zero value is not usable;
// construct with NewLogger.
type Logger struct {
	crit     sync.Mutex
	capacity int
	entries  []Entry

	// Verbose, when true, prefixes goroutine-tagged entries with the
	// calling goroutine's id. Off by default; the supervisor turns it on
	// when config.Config.Verbose is set.
	Verbose bool
}

// NewLogger returns a Logger that retains at most capacity entries, evicting
// the oldest entry once full.
func NewLogger(capacity int) *Logger {
	if capacity < 1 {
		capacity = 1
	}
	return &Logger{capacity: capacity}
}

// detailString renders v the way Log expects: errors via Error(), Stringers
// via String(), everything else via the %v verb.
func detailString(v interface{}) string {
	switch d := v.(type) {
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	default:
		return fmt.Sprintf("%v", d)
	}
}

// Log adds an entry to the log if perm allows it. detail is rendered
// according to its type: an error logs its Error() string, a fmt.Stringer
// logs its String(), anything else is formatted with %v.
func (l *Logger) Log(perm Permission, tag string, detail interface{}) {
	if perm == nil || !perm.AllowLogging() {
		return
	}

	s := detailString(detail)
	if l.Verbose {
		s = fmt.Sprintf("[goroutine %d] %s", assert.GetGoRoutineID(), s)
	}

	l.crit.Lock()
	defer l.crit.Unlock()

	l.entries = append(l.entries, Entry{Tag: tag, Detail: s})
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Logf is like Log but formats detail with fmt.Sprintf first.
func (l *Logger) Logf(perm Permission, tag string, format string, args ...interface{}) {
	l.Log(perm, tag, fmt.Sprintf(format, args...))
}

// Clear discards all entries.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
}

// Write writes every retained entry to w, one per line.
func (l *Logger) Write(w io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()
	for _, e := range l.entries {
		fmt.Fprintf(w, "%s\n", e)
	}
}

// Tail writes the most recent n entries to w, one per line. Asking for more
// entries than are retained is not an error; Tail simply writes what it has.
func (l *Logger) Tail(w io.Writer, n int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	if n < 0 {
		n = 0
	}

	var b strings.Builder
	for _, e := range l.entries[len(l.entries)-n:] {
		fmt.Fprintf(&b, "%s\n", e)
	}
	io.WriteString(w, b.String())
}

// central is the default Logger used by the package-level convenience
// functions below. Components that want their own isolated history (tests,
// mainly) should construct their own Logger with NewLogger instead.
var central = NewLogger(1000)

// Log adds an entry to the central logger, with an implicit Allow
// permission.
func Log(tag string, detail interface{}) {
	central.Log(Allow, tag, detail)
}

// Logf is like Log but formats detail with fmt.Sprintf first.
func Logf(tag string, format string, args ...interface{}) {
	central.Logf(Allow, tag, format, args...)
}

// Write writes every entry retained by the central logger to w.
func Write(w io.Writer) {
	central.Write(w)
}

// Tail writes the most recent n entries retained by the central logger to w.
func Tail(w io.Writer, n int) {
	central.Tail(w, n)
}

// Clear discards all entries retained by the central logger.
func Clear() {
	central.Clear()
}

// SetVerbose toggles goroutine-tagged verbose mode on the central logger,
// driven by config.Config.Verbose at startup.
func SetVerbose(v bool) {
	central.Verbose = v
}
