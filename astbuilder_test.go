package bms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func header(name string) Token {
	return Token{Header: &HeaderToken{Name: name, Value: "x"}}
}

func ctrl(kind ControlKind, arg string) Token {
	return Token{Control: &ControlToken{Kind: kind, Arg: arg}}
}

func TestBuildFlatBody(t *testing.T) {
	tokens := []Token{header("TITLE"), header("ARTIST")}
	tree, diags := Build(tokens)
	require.Empty(t, diags)
	require.Len(t, tree.Body, 2)
}

func TestBuildRandomIfEndif(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlRandom, "2"),
		ctrl(CtrlIf, "1"),
		header("A"),
		ctrl(CtrlEndIf, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, diags := Build(tokens)
	require.Empty(t, diags)
	require.Len(t, tree.Body, 1)
	rnd, ok := tree.Body[0].(RandomNode)
	require.True(t, ok)
	require.Equal(t, int64(2), rnd.Max)
	require.Len(t, rnd.Body, 1)
	ifc, ok := rnd.Body[0].(IfChainNode)
	require.True(t, ok)
	require.Len(t, ifc.Arms, 1)
	require.Equal(t, int64(1), ifc.Arms[0].Value)
}

func TestBuildIfElseIfElse(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlRandom, "3"),
		ctrl(CtrlIf, "1"),
		header("A"),
		ctrl(CtrlElseIf, "2"),
		header("B"),
		ctrl(CtrlElse, ""),
		header("C"),
		ctrl(CtrlEndIf, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, diags := Build(tokens)
	require.Empty(t, diags)
	rnd := tree.Body[0].(RandomNode)
	ifc := rnd.Body[0].(IfChainNode)
	require.Len(t, ifc.Arms, 2)
	require.Equal(t, int64(1), ifc.Arms[0].Value)
	require.Equal(t, int64(2), ifc.Arms[1].Value)
	require.NotNil(t, ifc.ElseBody)
}

func TestBuildInsaneConventionAutoClosesIf(t *testing.T) {
	// A new #RANDOM appears while the prior #IF is still open (no
	// #ENDIF seen). The IF chain closes in place and the RANDOM starts
	// as the next sibling, with no diagnostic: this is expected BMS
	// author behavior, not malformed input.
	tokens := []Token{
		ctrl(CtrlRandom, "2"),
		ctrl(CtrlIf, "1"),
		header("A"),
		ctrl(CtrlRandom, "3"),
		header("B"),
		ctrl(CtrlEndRandom, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, diags := Build(tokens)
	require.Empty(t, diags)
	outer := tree.Body[0].(RandomNode)
	// The IF chain closes with just "header A" in its one arm; the
	// inner #RANDOM becomes the next sibling in the outer block's body,
	// not a child of the arm, since it was never consumed as part of
	// the IF's body.
	require.Len(t, outer.Body, 2)
	ifc, ok := outer.Body[0].(IfChainNode)
	require.True(t, ok)
	require.Len(t, ifc.Arms, 1)
	require.Len(t, ifc.Arms[0].Body, 1)
	_, isLeaf := ifc.Arms[0].Body[0].(LeafNode)
	require.True(t, isLeaf)

	inner, ok := outer.Body[1].(RandomNode)
	require.True(t, ok)
	require.Equal(t, int64(3), inner.Max)
	require.Len(t, inner.Body, 1)
}

func TestBuildUnterminatedRandomProducesDiagnostic(t *testing.T) {
	tokens := []Token{ctrl(CtrlRandom, "2"), header("A")}
	_, diags := Build(tokens)
	require.Len(t, diags, 1)
	require.Equal(t, KindUnterminatedRandom, diags[0].Kind)
}

func TestBuildStraySkipDiagnostic(t *testing.T) {
	tokens := []Token{ctrl(CtrlSkip, "")}
	_, diags := Build(tokens)
	require.Len(t, diags, 1)
	require.Equal(t, KindSkipOutsideSwitch, diags[0].Kind)
}

func TestBuildSwitchCaseDefSkip(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlSwitch, "2"),
		ctrl(CtrlCase, "1"),
		header("A"),
		ctrl(CtrlSkip, ""),
		ctrl(CtrlCase, "2"),
		header("B"),
		ctrl(CtrlDef, ""),
		header("C"),
		ctrl(CtrlEndSwitch, ""),
	}
	tree, diags := Build(tokens)
	require.Empty(t, diags)
	sw := tree.Body[0].(SwitchNode)
	require.Len(t, sw.Arms, 3)
	require.True(t, sw.Arms[0].Skip)
	require.Equal(t, int64(1), sw.Arms[0].Value)
	require.False(t, sw.Arms[1].Skip)
	require.True(t, sw.Arms[2].IsDefault)
}
