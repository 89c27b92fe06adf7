package bms

/*
 This file defines the diagnostic surface shared by all four pipeline
 stages. Every stage accumulates Diagnostics instead of aborting; there is
 no fatal severity.
*/

import (
	"fmt"
	"strings"
)

// Severity classifies how serious a Diagnostic is. There is no Fatal
// level: every stage runs to completion regardless of what it finds.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Stage identifies which pipeline phase produced a Diagnostic.
type Stage int

const (
	StageLex Stage = iota
	StageAstBuild
	StageAstEval
	StageModelParse
	StageModelPlaying
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageAstBuild:
		return "ast-build"
	case StageAstEval:
		return "ast-eval"
	case StageModelParse:
		return "model-parse"
	case StageModelPlaying:
		return "model-playing"
	}
	return "unknown"
}

// Kind is a closed enum of diagnostic classes. Each Kind fixes a Severity
// and Stage; kindTable below is the single source of truth for both.
type Kind int

const (
	KindUnknownHeader Kind = iota
	KindMalformedMessageLine
	KindDuplicateHeaderDefinition
	KindDuplicateIndexedDefinition
	KindUnterminatedRandom
	KindUnterminatedIf
	KindUnterminatedSwitch
	KindElseWithoutIf
	KindEndIfWithoutIf
	KindEndRandomWithoutRandom
	KindEndSwitchWithoutSwitch
	KindCaseOutsideSwitch
	KindSkipOutsideSwitch
	KindDiscriminantOutOfRange
	KindLateBaseDeclaration
	KindDanglingLongNote
	KindDegenerateLongNote
	KindDuplicateVisibleNote
	KindEmptyChart
	KindUndefinedObjectReference
	KindInvalidChannelNumber
	KindMalformedStp
	KindUnpairedLongNote
)

// kindInfo is the fixed (severity, stage, message template) triple for a
// Kind. Held in an array rather than a map so KindX values can be used as
// direct indices.
type kindInfo struct {
	severity Severity
	stage    Stage
	message  string
}

var kindTable = [...]kindInfo{
	KindUnknownHeader:              {Warning, StageLex, "unrecognized header %q"},
	KindMalformedMessageLine:       {Warning, StageLex, "malformed message line: %s"},
	KindDuplicateHeaderDefinition:  {Warning, StageModelParse, "header %q redefined"},
	KindDuplicateIndexedDefinition: {Warning, StageModelParse, "definition %s redefined"},
	KindUnterminatedRandom:         {Error, StageAstBuild, "#RANDOM without matching #ENDRANDOM"},
	KindUnterminatedIf:             {Error, StageAstBuild, "#IF without matching #ENDIF"},
	KindUnterminatedSwitch:         {Error, StageAstBuild, "#SWITCH without matching #ENDSW"},
	KindElseWithoutIf:              {Warning, StageAstBuild, "#ELSE without an open #IF"},
	KindEndIfWithoutIf:             {Warning, StageAstBuild, "#ENDIF without an open #IF"},
	KindEndRandomWithoutRandom:     {Warning, StageAstBuild, "#ENDRANDOM without an open #RANDOM"},
	KindEndSwitchWithoutSwitch:     {Warning, StageAstBuild, "#ENDSW without an open #SWITCH"},
	KindCaseOutsideSwitch:          {Warning, StageAstBuild, "#CASE outside of any #SWITCH"},
	KindSkipOutsideSwitch:          {Warning, StageAstBuild, "#SKIP outside of any #SWITCH"},
	KindDiscriminantOutOfRange:     {Warning, StageAstEval, "discriminant %d out of range [1,%d], block unselected"},
	KindLateBaseDeclaration:        {Warning, StageModelParse, "#BASE declared after object ids were already read"},
	KindDanglingLongNote:           {Error, StageModelParse, "long note opened but never closed in lane %s"},
	KindDegenerateLongNote:         {Warning, StageModelParse, "long note start and end coincide in lane %s"},
	KindDuplicateVisibleNote:       {Warning, StageModelParse, "two visible notes at the same instant in lane %s"},
	KindEmptyChart:                 {Warning, StageModelParse, "chart contains no playable objects"},
	KindUndefinedObjectReference:   {Warning, StageModelParse, "object id %s referenced but never defined"},
	KindInvalidChannelNumber:       {Warning, StageLex, "unrecognized channel number %q"},
	KindMalformedStp:               {Warning, StageModelParse, "malformed #STP value %q"},
	KindUnpairedLongNote:           {Warning, StageModelParse, "#LNOBJ terminator in lane %s has no preceding note to close"},
}

func (k Kind) info() kindInfo {
	if int(k) < 0 || int(k) >= len(kindTable) {
		return kindInfo{Error, StageLex, "unknown diagnostic"}
	}
	return kindTable[k]
}

// Severity returns the fixed severity for k.
func (k Kind) Severity() Severity { return k.info().severity }

// Stage returns the fixed stage for k.
func (k Kind) Stage() Stage { return k.info().stage }

// Span locates a Diagnostic within the original source: a line number
// (1-based) and the raw line text, so Render can show a caret excerpt
// without re-reading the source.
type Span struct {
	Line int
	Text string
}

// Diagnostic is one accumulated finding. Kind fixes Severity and Stage;
// Args are formatted into Kind's message template by Render.
type Diagnostic struct {
	Kind Kind
	Span Span
	Args []interface{}
}

// NewDiagnostic builds a Diagnostic for kind at span, formatted with args.
func NewDiagnostic(kind Kind, span Span, args ...interface{}) Diagnostic {
	return Diagnostic{Kind: kind, Span: span, Args: args}
}

// Severity returns d's fixed severity.
func (d Diagnostic) Severity() Severity { return d.Kind.Severity() }

// Stage returns d's fixed stage.
func (d Diagnostic) Stage() Stage { return d.Kind.Stage() }

// Message renders d's message template with its arguments.
func (d Diagnostic) Message() string {
	return fmt.Sprintf(d.Kind.info().message, d.Args...)
}

// Render produces a single-line-plus-caret excerpt, e.g.:
//
//	line 12: warning [lex]: malformed message line: odd-length payload
//	  #00211:A
//	  ^
func (d Diagnostic) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "line %d: %s [%s]: %s\n", d.Span.Line, d.Severity(), d.Stage(), d.Message())
	if d.Span.Text != "" {
		fmt.Fprintf(&b, "  %s\n  ^\n", d.Span.Text)
	}
	return b.String()
}

// RenderAll renders a slice of Diagnostics, one block per entry.
func RenderAll(diags []Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		b.WriteString(d.Render())
	}
	return b.String()
}

// HasErrors reports whether any Diagnostic in diags is Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity() == Error {
			return true
		}
	}
	return false
}
