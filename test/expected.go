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

// Package test provides small helpers used by hotload's table-driven
// tests. It is deliberately independent of any assertion library: every
// function takes the *testing.T in use so that failures are reported
// against the correct call site.
package test

import (
	"math"
	"reflect"
	"testing"
)

// Equate fails the test unless a and b are equal, via reflect.DeepEqual.
func Equate(t *testing.T, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected %v, got %v", b, a)
	}
}

// ExpectEquality is an alias of Equate, kept for call sites that spell it
// out in full.
func ExpectEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	Equate(t, a, b)
}

// DemandEquality is like Equate but stops the test immediately (via
// t.Fatalf) instead of continuing, for use when a later assertion in the
// same test would panic on unequal input (e.g. indexing both sides of a
// slice comparison by a length that turned out to differ).
func DemandEquality(t *testing.T, a, b interface{}) {
	t.Helper()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected %v, got %v", b, a)
	}
}

// ExpectInequality fails the test if a and b are equal.
func ExpectInequality(t *testing.T, a, b interface{}) {
	t.Helper()
	if reflect.DeepEqual(a, b) {
		t.Errorf("expected %v and %v to differ", a, b)
	}
}

// ExpectApproximate fails the test unless a and b are within tolerance of
// each other.
func ExpectApproximate(t *testing.T, a, b, tolerance float64) {
	t.Helper()
	if math.Abs(a-b) > tolerance {
		t.Errorf("expected %v to be within %v of %v", a, tolerance, b)
	}
}

// truthy reports whether v represents success: true, a nil error, or a nil
// interface/pointer/error value.
func truthy(v interface{}) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case bool:
		return x
	case error:
		return x == nil
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
			return rv.IsNil()
		}
		return false
	}
}

// ExpectSuccess fails the test unless v is a nil error, nil, or true.
func ExpectSuccess(t *testing.T, v interface{}) {
	t.Helper()
	if !truthy(v) {
		t.Errorf("expected success, got %v", v)
	}
}

// ExpectFailure fails the test unless v is a non-nil error, or false.
func ExpectFailure(t *testing.T, v interface{}) {
	t.Helper()
	if truthy(v) {
		t.Errorf("expected failure, got %v", v)
	}
}

// ExpectedSuccess and ExpectedFailure are spelling variants of
// ExpectSuccess/ExpectFailure that appear at some hotload call sites.
func ExpectedSuccess(t *testing.T, v interface{}) {
	t.Helper()
	ExpectSuccess(t, v)
}

func ExpectedFailure(t *testing.T, v interface{}) {
	t.Helper()
	ExpectFailure(t, v)
}
