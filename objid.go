package bms

/*
 This file defines ObjId, the two-character object identifier used to key
 every definition table and every message-line object reference.
*/

import (
	"errors"
	"fmt"
)

// Base selects the numeral system object ids are decoded under. Base36 is
// the historical default; Base62 is enabled per-chart via "#BASE 62".
type Base int

const (
	Base36 Base = 36
	Base62 Base = 62
)

func (b Base) String() string {
	switch b {
	case Base36:
		return "36"
	case Base62:
		return "62"
	}
	return "unknown"
}

// ErrInvalidObjId is returned by ParseObjId when the input is not exactly
// two characters from [0-9A-Za-z].
var ErrInvalidObjId = errors.New("bms: object id must be exactly two [0-9A-Za-z] characters")

// ObjId is a two-character object identifier, stored verbatim (case is
// preserved so base-62 charts can distinguish "a1" from "A1"). The all-zero
// id "00" is reserved and means "no object".
type ObjId [2]byte

// NoneObjId is the reserved "00" id meaning "no object".
var NoneObjId = ObjId{'0', '0'}

// ParseObjId parses a two-character object id. It does not know the
// chart's base; case folding for base-36 charts happens in Key.
func ParseObjId(s string) (ObjId, error) {
	if len(s) != 2 || !isIdChar(s[0]) || !isIdChar(s[1]) {
		return ObjId{}, fmt.Errorf("%w: %q", ErrInvalidObjId, s)
	}
	return ObjId{s[0], s[1]}, nil
}

func isIdChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// isObjIdChars reports whether s is a well-formed two-character id string,
// without allocating an ObjId.
func isObjIdChars(s string) bool {
	return len(s) == 2 && isIdChar(s[0]) && isIdChar(s[1])
}

// String returns the id's two raw characters.
func (o ObjId) String() string {
	return string(o[:])
}

// IsNone reports whether o is the reserved "00" id.
func (o ObjId) IsNone() bool {
	return digitValue(o[0]) == 0 && digitValue(o[1]) == 0
}

// digitValue maps a single id character to its base-62 digit value
// (0-9=0-9, A-Z=10-35, a-z=36-61).
func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 36
	}
	return -1
}

// Index returns o's numeric value under the given base. Under Base36,
// letters fold case-insensitively; under Base62, case is significant.
func (o ObjId) Index(base Base) int {
	hi, lo := digitValue(o[0]), digitValue(o[1])
	if base == Base36 {
		hi, lo = foldBase36(hi), foldBase36(lo)
		return hi*36 + lo
	}
	return hi*62 + lo
}

func foldBase36(v int) int {
	if v >= 36 {
		return v - 26 // fold a-z (36-61) back onto A-Z (10-35)
	}
	return v
}

// Key returns the canonical form of o used as a definition-table map key
// under base: for Base36 this upper-cases letters (so "a1" and "A1" collide
// the way the format's case-insensitive digits require); for Base62 it
// returns o unchanged.
func (o ObjId) Key(base Base) ObjId {
	if base == Base62 {
		return o
	}
	return ObjId{foldUpper(o[0]), foldUpper(o[1])}
}

func foldUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// Equal compares two ids under base, applying the same case-folding Key
// does.
func (o ObjId) Equal(other ObjId, base Base) bool {
	return o.Key(base) == other.Key(base)
}

// Less orders two ids by their numeric value under base.
func (o ObjId) Less(other ObjId, base Base) bool {
	return o.Index(base) < other.Index(base)
}

// FormatObjId renders a numeric index as a two-character id under base.
// It is the inverse of Index.
func FormatObjId(index int, base Base) (ObjId, error) {
	max := int(base) * int(base)
	if index < 0 || index >= max {
		return ObjId{}, fmt.Errorf("bms: index %d out of range for base %s", index, base)
	}
	hi := index / int(base)
	lo := index % int(base)
	return ObjId{formatDigit(hi), formatDigit(lo)}, nil
}

func formatDigit(v int) byte {
	switch {
	case v < 10:
		return byte('0' + v)
	case v < 36:
		return byte('A' + v - 10)
	default:
		return byte('a' + v - 36)
	}
}

// isBase62OnlyChar reports whether c can only be a valid id character when
// the chart is interpreted under Base62 (i.e. it is a lowercase letter,
// which Base36 would fold onto its uppercase counterpart instead of
// treating as distinct).
func isBase62OnlyChar(c byte) bool {
	return c >= 'a' && c <= 'z'
}
