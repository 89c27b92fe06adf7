package bms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateSelectsMatchingIfArm(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlRandom, "2"),
		ctrl(CtrlIf, "1"),
		header("SELECTED"),
		ctrl(CtrlElse, ""),
		header("NOT_SELECTED"),
		ctrl(CtrlEndIf, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, _ := Build(tokens)
	out, diags := Evaluate(tree, NewSequenceRng(1))
	require.Empty(t, diags)
	require.Len(t, out, 1)
	require.Equal(t, "SELECTED", out[0].Header.Name)
}

func TestEvaluateNeverDrawsRngForUnselectedBranch(t *testing.T) {
	// The nested #SWITCH lives only inside the IF arm that does NOT
	// match the outer draw; if the evaluator ever descended into it
	// anyway, it would draw for it and its #DEF arm would emit
	// SHOULD_NOT_APPEAR. (A #RANDOM written directly in the arm would
	// instead close the IF under the insane convention.)
	tokens := []Token{
		ctrl(CtrlRandom, "2"),
		ctrl(CtrlIf, "1"),
		ctrl(CtrlSwitch, "9"),
		ctrl(CtrlDef, ""),
		header("SHOULD_NOT_APPEAR"),
		ctrl(CtrlEndSwitch, ""),
		ctrl(CtrlElse, ""),
		header("SELECTED"),
		ctrl(CtrlEndIf, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, _ := Build(tokens)
	rng := NewSequenceRng(2)
	out, _ := Evaluate(tree, rng)
	require.Len(t, out, 1)
	require.Equal(t, "SELECTED", out[0].Header.Name)
}

func TestEvaluateSwitchFallsThroughIntoDef(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlSwitch, "2"),
		ctrl(CtrlCase, "1"),
		header("A"),
		ctrl(CtrlCase, "2"),
		header("B"),
		ctrl(CtrlDef, ""),
		header("DEFAULT"),
		ctrl(CtrlEndSwitch, ""),
	}
	tree, _ := Build(tokens)
	out, diags := Evaluate(tree, NewSequenceRng(1))
	require.Empty(t, diags)
	require.Len(t, out, 3) // A, B, DEFAULT all fall through since CASE 1 had no #SKIP
	require.Equal(t, "A", out[0].Header.Name)
	require.Equal(t, "B", out[1].Header.Name)
	require.Equal(t, "DEFAULT", out[2].Header.Name)
}

func TestEvaluateSwitchSkipStopsFallthrough(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlSwitch, "2"),
		ctrl(CtrlCase, "1"),
		header("A"),
		ctrl(CtrlSkip, ""),
		ctrl(CtrlCase, "2"),
		header("B"),
		ctrl(CtrlEndSwitch, ""),
	}
	tree, _ := Build(tokens)
	out, _ := Evaluate(tree, NewSequenceRng(1))
	require.Len(t, out, 1)
	require.Equal(t, "A", out[0].Header.Name)
}

func TestEvaluateDiscriminantOutOfRangeIsUnselected(t *testing.T) {
	// A zero upper bound leaves no valid discriminant: the sequence rng
	// only clamps when max is positive, so the drawn 99 reaches the
	// evaluator unchanged and lies outside [1, 0].
	tokens := []Token{
		ctrl(CtrlSwitch, "0"),
		ctrl(CtrlCase, "1"),
		header("A"),
		ctrl(CtrlEndSwitch, ""),
	}
	tree, _ := Build(tokens)
	out, diags := Evaluate(tree, NewSequenceRng(99))
	require.Empty(t, out)
	require.Len(t, diags, 1)
	require.Equal(t, KindDiscriminantOutOfRange, diags[0].Kind)
}

func TestEvaluateSetSwitchUsesFixedValueWithoutDrawing(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlSetSwitch, "2"),
		ctrl(CtrlCase, "1"),
		header("A"),
		ctrl(CtrlSkip, ""),
		ctrl(CtrlCase, "2"),
		header("B"),
		ctrl(CtrlEndSwitch, ""),
	}
	tree, _ := Build(tokens)
	// An empty sequence rng would return a garbage default (1) for any
	// draw; since SETSWITCH must not draw at all, the fixed value 2 still
	// has to match the #CASE 2 arm, not #CASE 1.
	out, _ := Evaluate(tree, NewSequenceRng())
	require.Len(t, out, 1)
	require.Equal(t, "B", out[0].Header.Name)
}

func TestEvaluateSetRandomUsesFixedValueWithoutDrawing(t *testing.T) {
	tokens := []Token{
		ctrl(CtrlSet, "5"),
		ctrl(CtrlIf, "5"),
		header("FIXED"),
		ctrl(CtrlEndIf, ""),
		ctrl(CtrlEndRandom, ""),
	}
	tree, _ := Build(tokens)
	// An empty sequence rng would return a garbage default (1) for any
	// draw; since SETRANDOM must not draw at all, the fixed value 5
	// still has to match the #IF 5 arm.
	out, _ := Evaluate(tree, NewSequenceRng())
	require.Len(t, out, 1)
	require.Equal(t, "FIXED", out[0].Header.Name)
}
