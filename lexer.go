package bms

/*
 This file is the first pipeline stage: it turns raw source text into a
 flat []Token plus any diagnostics, one line at a time. Grounded directly
 on the teacher's decode/decodeLineOfMasterPlaylist/decodeLineOfMediaPlaylist
 line-by-line switch-on-prefix scanner (reader.go), generalized from "two
 playlist line kinds" to "header / message / control-flow / unknown".
 Unlike the teacher's strict-mode early return, every malformed line here
 pushes one diagnostic and the scan continues: there is no abort path.
*/

import (
	"strconv"
	"strings"
)

// controlDirectives maps an upper-cased directive word to its ControlKind.
var controlDirectives = map[string]ControlKind{
	"RANDOM":    CtrlRandom,
	"IF":        CtrlIf,
	"ELSEIF":    CtrlElseIf,
	"ELSE":      CtrlElse,
	"ENDIF":     CtrlEndIf,
	"SWITCH":    CtrlSwitch,
	"SETRANDOM": CtrlSet,
	"SETSWITCH": CtrlSetSwitch,
	"CASE":      CtrlCase,
	"DEF":       CtrlDef,
	"SKIP":      CtrlSkip,
	"ENDSW":     CtrlEndSwitch,
	"ENDRANDOM": CtrlEndRandom,
}

// Lex tokenizes BMS source text. It never returns an error: malformed or
// unrecognized lines become diagnostics and/or UnknownToken entries, and
// scanning always proceeds to the end of input.
func Lex(source string) ([]Token, []Diagnostic) {
	var tokens []Token
	var diags []Diagnostic

	for i, raw := range splitSourceLines(source) {
		line := trimLineEnd(raw)
		trimmed := strings.TrimSpace(line)
		pos := Pos{Line: i + 1, Text: line}

		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "#") {
			// BMS tolerates free-text lines outside of any recognized
			// tag (comments, blank decoration); they are silently
			// dropped rather than flagged, matching the teacher's
			// tolerant non-strict decode path for unrecognized tags.
			continue
		}

		body := trimmed[1:]
		tok, diag, ok := lexLine(body, pos)
		if diag != nil {
			diags = append(diags, *diag)
		}
		if ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens, diags
}

// lexLine classifies one '#'-stripped, trimmed line body.
func lexLine(body string, pos Pos) (Token, *Diagnostic, bool) {
	if msg, ok := tryLexMessage(body); ok {
		return Token{Message: &msg, Pos: pos}, nil, true
	}
	if d := messageDiagnosticIfLooksLikeOne(body, pos); d != nil {
		return Token{}, d, false
	}

	word, rest := splitWord(body)
	upper := strings.ToUpper(word)

	if kind, ok := controlDirectives[upper]; ok {
		return Token{Control: &ControlToken{Kind: kind, Arg: strings.TrimSpace(rest)}, Pos: pos}, nil, true
	}

	if indexed, recognized := isRecognizedHeader(upper); recognized {
		name := upper
		if indexed {
			// Preserve the original case of the trailing two-character
			// id: base-62 charts distinguish "#WAVa1" from "#WAVA1",
			// so only the (never case-sensitive) prefix is folded.
			name = upper[:len(upper)-2] + word[len(word)-2:]
		}
		return Token{Header: &HeaderToken{Name: name, Value: strings.TrimSpace(rest)}, Pos: pos}, nil, true
	}

	d := NewDiagnostic(KindUnknownHeader, pos, "#"+word)
	return Token{Unknown: &UnknownToken{Raw: "#" + body}, Pos: pos}, &d, true
}

// tryLexMessage attempts to parse body as "TTTCC:DATA". Returns ok=false
// if body does not have the right shape, leaving a valid-looking but
// malformed message line to messageDiagnosticIfLooksLikeOne instead of
// silently accepting bad data.
func tryLexMessage(body string) (MessageToken, bool) {
	if len(body) < 6 || body[5] != ':' {
		return MessageToken{}, false
	}
	trackStr := body[0:3]
	channel := strings.ToUpper(body[3:5])
	data := body[6:]

	track, err := strconv.Atoi(trackStr)
	if err != nil || track < 0 {
		return MessageToken{}, false
	}
	if !isChannelCode(channel) {
		return MessageToken{}, false
	}
	if channel == "02" {
		// Measure-length lines carry a plain decimal literal, not
		// object-id pairs, so they skip the id-pair validation below.
		if data == "" {
			return MessageToken{}, false
		}
		return MessageToken{Track: track, Channel: channel, Data: data}, true
	}
	if len(data) == 0 || len(data)%2 != 0 {
		return MessageToken{}, false
	}
	for i := 0; i < len(data); i++ {
		if !isIdChar(data[i]) {
			return MessageToken{}, false
		}
	}
	return MessageToken{Track: track, Channel: channel, Data: data}, true
}

// messageDiagnosticIfLooksLikeOne reports a malformed-message diagnostic
// when body has the "TTTCC:..." shape but tryLexMessage rejected it (odd
// payload length, non-numeral payload characters, unknown channel), so
// authors get a precise complaint instead of a generic unknown-header
// warning about a line that clearly wasn't meant to be a header.
func messageDiagnosticIfLooksLikeOne(body string, pos Pos) *Diagnostic {
	if len(body) < 6 || body[5] != ':' {
		return nil
	}
	trackStr := body[0:3]
	if _, err := strconv.Atoi(trackStr); err != nil {
		return nil
	}
	channel := strings.ToUpper(body[3:5])
	data := body[6:]

	if !isChannelCode(channel) {
		d := NewDiagnostic(KindInvalidChannelNumber, pos, channel)
		return &d
	}
	if channel == "02" {
		if data == "" {
			d := NewDiagnostic(KindMalformedMessageLine, pos, "empty measure-length payload")
			return &d
		}
		return nil
	}
	if len(data) == 0 || len(data)%2 != 0 {
		d := NewDiagnostic(KindMalformedMessageLine, pos, "odd-length payload")
		return &d
	}
	for i := 0; i < len(data); i++ {
		if !isIdChar(data[i]) {
			d := NewDiagnostic(KindMalformedMessageLine, pos, "payload contains non [0-9A-Za-z] character")
			return &d
		}
	}
	return nil
}

// isChannelCode reports whether code is two uppercase alphanumeric
// characters, the lexical shape every channel code has regardless of
// whether classifyChannel recognizes its meaning.
func isChannelCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := code[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// splitWord splits s on the first run of whitespace, returning the first
// word and the remainder (which may itself have leading whitespace).
func splitWord(s string) (word, rest string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// splitSourceLines splits source on \n with strings.Split; the \r left
// over from \r\n endings is removed per line by trimLineEnd, matching the
// teacher's trimLineEnd-based line handling in reader.go.
func splitSourceLines(source string) []string {
	return strings.Split(source, "\n")
}

// trimLineEnd strips a single trailing \r left behind by \r\n line endings.
func trimLineEnd(line string) string {
	return strings.TrimSuffix(line, "\r")
}
