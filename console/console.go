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

// Package console puts the controlling terminal into raw mode so the
// supervisor can read single keypresses ('r' force rebuild, 'q' quit)
// without waiting for a newline, mirroring the teacher's easyterm wrapper
// around pkg/term/termios.
package console

import (
	"os"
	"syscall"

	"github.com/pkg/term/termios"

	"github.com/jetsetilly/hotload/logger"
)

// Console wraps the controlling terminal's file descriptor, restoring its
// original termios settings on Close.
type Console struct {
	fd       uintptr
	original syscall.Termios
	keys     chan byte
	done     chan struct{}
}

// Open puts stdin into raw, non-canonical mode and starts a reader
// goroutine that delivers keypresses on the returned Console's Keys
// channel. Open is a no-op that returns a Console with a nil Keys channel
// if stdin is not a terminal (e.g. running under a process supervisor).
func Open() (*Console, error) {
	fd := os.Stdin.Fd()

	var attr syscall.Termios
	if err := termios.Tcgetattr(fd, &attr); err != nil {
		logger.Logf("console", "stdin is not a terminal, keypress control disabled: %v", err)
		return &Console{}, nil
	}

	c := &Console{
		fd:       fd,
		original: attr,
		keys:     make(chan byte, 1),
		done:     make(chan struct{}),
	}

	raw := attr
	termios.Cfmakeraw(&raw)
	if err := termios.Tcsetattr(fd, termios.TCIFLUSH, &raw); err != nil {
		// still return a usable (keyless) Console: its nil Keys channel
		// blocks forever in a select, same as the not-a-terminal case above
		return &Console{}, err
	}

	go c.read()

	return c, nil
}

func (c *Console) read() {
	buf := make([]byte, 1)
	for {
		select {
		case <-c.done:
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		select {
		case c.keys <- buf[0]:
		case <-c.done:
			return
		}
	}
}

// Keys returns the channel of keypresses read from the terminal. Reading
// from a nil channel blocks forever, which is the desired behavior when
// Open found no terminal to attach to.
func (c *Console) Keys() <-chan byte {
	return c.keys
}

// Close restores the terminal's original settings and stops the reader
// goroutine.
func (c *Console) Close() error {
	if c.done != nil {
		close(c.done)
	}
	if c.fd == 0 {
		return nil
	}
	return termios.Tcsetattr(c.fd, termios.TCIFLUSH, &c.original)
}
