package bms

/*
 This file defines ObjTime, the exact-rational in-chart time coordinate,
 and the small Decimal fixed-point type BPM/STOP/SCROLL/SPEED values use.
 Both are built over math/big.Rat: no rational-arithmetic library appears
 anywhere in the reference pack this module was grounded on, so the
 standard library is the right, and only, tool here (see DESIGN.md).
*/

import (
	"fmt"
	"math/big"
	"strings"
)

// ObjTime is a position within a chart: a track number plus an exact
// fractional offset within that track, always reduced to lowest terms.
// Ordering and equality never use floating point, per the "no float for
// time" invariant.
type ObjTime struct {
	Track int
	Frac  *big.Rat // in [0, 1)
}

// NewObjTime builds an ObjTime from track, numerator and denominator. The
// fraction is reduced to lowest terms automatically (big.Rat does this on
// construction), satisfying the canonical-form invariant.
func NewObjTime(track int, num, den int64) (ObjTime, error) {
	if den <= 0 {
		return ObjTime{}, fmt.Errorf("bms: objtime denominator must be positive, got %d", den)
	}
	if num < 0 || num >= den {
		return ObjTime{}, fmt.Errorf("bms: objtime numerator %d out of range [0,%d)", num, den)
	}
	return ObjTime{Track: track, Frac: big.NewRat(num, den)}, nil
}

// ZeroObjTime returns the start of the given track (fraction 0/1).
func ZeroObjTime(track int) ObjTime {
	return ObjTime{Track: track, Frac: big.NewRat(0, 1)}
}

// Compare returns -1, 0, or 1 if t is before, equal to, or after other.
// Tracks compare first; within the same track the reduced fraction
// compares exactly.
func (t ObjTime) Compare(other ObjTime) int {
	if t.Track != other.Track {
		if t.Track < other.Track {
			return -1
		}
		return 1
	}
	return t.Frac.Cmp(other.Frac)
}

// Less reports whether t sorts before other.
func (t ObjTime) Less(other ObjTime) bool {
	return t.Compare(other) < 0
}

// Equal reports whether t and other denote the same instant.
func (t ObjTime) Equal(other ObjTime) bool {
	return t.Compare(other) == 0
}

// String renders the time as "track+num/den" for diagnostics and tests.
func (t ObjTime) String() string {
	return fmt.Sprintf("%03d+%s", t.Track, t.Frac.RatString())
}

// key returns a stable, comparable string usable as a map key for one
// instant.
func (t ObjTime) key() string {
	return fmt.Sprintf("%d/%s", t.Track, t.Frac.RatString())
}

// Decimal is an exact fixed-point decimal value. It preserves the input's
// original scale (digits after the decimal point) on output, which matters
// because BMS authors rely on trailing-zero preservation (e.g. "155.50")
// and on exact division never introducing float error.
type Decimal struct {
	rat   *big.Rat
	scale int
}

// ParseDecimal parses a plain decimal literal such as "155.5" or "120".
func ParseDecimal(s string) (Decimal, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return Decimal{}, fmt.Errorf("bms: invalid decimal %q", s)
	}
	scale := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		scale = len(s) - i - 1
	}
	return Decimal{rat: r, scale: scale}, nil
}

// DecimalFromInt builds a Decimal from an integer, e.g. a hex BPM value
// decoded from channel 03.
func DecimalFromInt(v int64) Decimal {
	return Decimal{rat: new(big.Rat).SetInt64(v), scale: 0}
}

// IsZero reports whether d is the unset/zero value.
func (d Decimal) IsZero() bool {
	return d.rat == nil || d.rat.Sign() == 0
}

// Rat exposes the underlying exact value for arithmetic.
func (d Decimal) Rat() *big.Rat {
	if d.rat == nil {
		return new(big.Rat)
	}
	return d.rat
}

// Cmp compares two decimals exactly.
func (d Decimal) Cmp(other Decimal) int {
	return d.Rat().Cmp(other.Rat())
}

// String renders d at its original scale, preserving trailing zeros.
func (d Decimal) String() string {
	if d.rat == nil {
		return "0"
	}
	return d.rat.FloatString(d.scale)
}
