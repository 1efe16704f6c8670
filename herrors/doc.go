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

// Package herrors is a helper package for the plain Go language error type,
// built around hotload's six-kind error model (ParseError, IoError,
// ProtocolError, EncodingError, Unsupported, BuildFailed).
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package, but it also takes a Kind. The
// Is() function can be used to check whether an error was created by
// Errorf() with a specific pattern; errors.Is(err, herrors.Unsupported)
// checks the Kind instead. For example:
//
//	a := 10
//	e := herrors.Errorf(herrors.ParseError, "error: value = %d", a)
//
//	if herrors.Is(e, "error: value = %d") {
//		fmt.Println("true")
//	}
//	if errors.Is(e, herrors.ParseError) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar to Is() but checks if a pattern occurs
// somewhere in the error chain.
//
//	a := 10
//	e := herrors.Errorf(herrors.ParseError, "error: value = %d", a)
//	f := herrors.Errorf(herrors.ParseError, "fatal: %v", e)
//
//	if herrors.Has(f, "error: value = %d") {
//		fmt.Println("true")
//	}
//
// Note that in this example, Is(f, "error: value = %d") would fail (return
// false), because f's own pattern is "fatal: %v" - the inner error is only
// reachable through Has().
//
// The IsAny() function answers whether the error was created by
// herrors.Errorf(). Put another way, it returns true if the error is
// 'curated' and false if the error is 'uncurated'. Alternatively, we can
// think of the difference as being 'expected' and 'unexpected' depending on
// how we choose to handle the result of the function call.
//
// The Error() function implementation for curated errors ensures that the
// error chain is normalised: it does not contain duplicate adjacent parts.
// The practical advantage of this is that it alleviates the problem of when
// and how to wrap an error that is already curated. For example:
//
//	func A() error {
//		err := B()
//		if err != nil {
//			return herrors.Errorf(herrors.IoError, "error: %v", err)
//		}
//		return nil
//	}
//
//	func B() error {
//		return herrors.Errorf(herrors.IoError, "not yet implemented")
//	}
//
// A() returns an error whose message is "error: not yet implemented", not
// "error: error: not yet implemented".
//
// For the purposes of this package we think of chains as being composed of
// parts separated by the sub-string ': ', as suggested on p239 of "The Go
// Programming Language" (Donovan, Kernighan).
package herrors
