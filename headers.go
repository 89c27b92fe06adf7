package bms

/*
 This file is the recognized-header table: which "#NAME value" lines the
 lexer treats as a known header versus passing through as unrecognized
 (which produces a KindUnknownHeader diagnostic but never aborts).
*/

import "strings"

// exactHeaders holds header names that take exactly one value and are
// never indexed (no trailing two-character id), e.g. "#BPM 130".
var exactHeaders = map[string]bool{
	"PLAYER":     true,
	"GENRE":      true,
	"TITLE":      true,
	"SUBTITLE":   true,
	"ARTIST":     true,
	"SUBARTIST":  true,
	"MAKER":      true,
	"COMMENT":    true,
	"BPM":        true,
	"PLAYLEVEL":  true,
	"RANK":       true,
	"TOTAL":      true,
	"STAGEFILE":  true,
	"BANNER":     true,
	"BACKBMP":    true,
	"DIFFICULTY": true,
	"BASE":       true,
	"VOLWAV":     true,
	"LNTYPE":     true,
	"LNOBJ":      true,
	"PREVIEW":    true,
	"STP":        true,
}

// indexedHeaderPrefixes holds the name prefixes of headers that carry a
// trailing two-character object id, e.g. "#WAV01", "#BPM0A", "#STOPZZ".
var indexedHeaderPrefixes = []string{
	"WAV",
	"BMP",
	"BPM",
	"STOP",
	"SCROLL",
	"SPEED",
	"TEXT",
	"ARGB",
}

// isRecognizedHeader reports whether name (already upper-cased, without
// the leading '#') is a known header, and if so whether it is indexed
// (carries a trailing object id that must be split off by the caller).
func isRecognizedHeader(name string) (indexed bool, recognized bool) {
	if exactHeaders[name] {
		return false, true
	}
	for _, prefix := range indexedHeaderPrefixes {
		if len(name) == len(prefix)+2 && strings.HasPrefix(name, prefix) && isObjIdChars(name[len(prefix):]) {
			return true, true
		}
	}
	return false, false
}

// splitIndexedHeader splits a recognized indexed header name into its
// prefix and trailing object id, e.g. "WAV01" -> ("WAV", "01").
func splitIndexedHeader(name string) (prefix string, id ObjId) {
	for _, p := range indexedHeaderPrefixes {
		if len(name) == len(p)+2 && strings.HasPrefix(name, p) {
			idStr := name[len(p):]
			parsed, err := ParseObjId(idStr)
			if err != nil {
				return p, ObjId{}
			}
			return p, parsed
		}
	}
	return name, ObjId{}
}
