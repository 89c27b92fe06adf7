package bms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiagnosticSeverityAndStageAreFixedByKind(t *testing.T) {
	d := NewDiagnostic(KindUnterminatedRandom, Span{Line: 3})
	require.Equal(t, Error, d.Severity())
	require.Equal(t, StageAstBuild, d.Stage())

	d2 := NewDiagnostic(KindUnknownHeader, Span{Line: 1}, "#FOO")
	require.Equal(t, Warning, d2.Severity())
	require.Equal(t, StageLex, d2.Stage())
}

func TestDiagnosticRenderIncludesLineAndExcerpt(t *testing.T) {
	d := NewDiagnostic(KindMalformedMessageLine, Span{Line: 12, Text: "#00211:A"}, "odd-length payload")
	out := d.Render()
	require.True(t, strings.Contains(out, "line 12"))
	require.True(t, strings.Contains(out, "#00211:A"))
	require.True(t, strings.Contains(out, "odd-length payload"))
}

func TestHasErrors(t *testing.T) {
	warnOnly := []Diagnostic{NewDiagnostic(KindUnknownHeader, Span{}, "#X")}
	require.False(t, HasErrors(warnOnly))

	withErr := append(warnOnly, NewDiagnostic(KindUnterminatedIf, Span{}))
	require.True(t, HasErrors(withErr))
}
