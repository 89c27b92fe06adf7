package bms

/*
 This file is the second pipeline stage: it turns a flat []Token into a
 Tree of nested RANDOM/IF/SWITCH blocks. Grounded on the teacher's
 decodingState (reader.go) for "one mutable value threaded through a
 line scan accumulates structure", generalized into an explicit recursive
 descent over an index since BMS control flow nests arbitrarily deep.

 The "insane convention": a new #RANDOM (or #SETRANDOM) encountered while
 an #IF chain is still open closes that IF chain in place, rather than
 being treated as a stray token inside it. Real-world charts rely on this
 behavior, so it is implemented as ordinary control flow, not flagged.

 More generally, any terminator belonging to a still-open ENCLOSING block
 (its #ENDRANDOM, #ENDSW, #ELSEIF/#ELSE/#ENDIF, ...) encountered while a
 nested block is open closes the nested block in place too, leaving the
 terminator unconsumed for the block that actually owns it. Every
 parseUnits call is given the full set of such outer terminators (the
 union of every still-open ancestor's own stop set) so this bubbling
 works no matter how deep the nesting goes.
*/

import (
	"strconv"
	"strings"
)

// Build parses tokens into a Tree. It never fails outright: unmatched or
// unterminated blocks push a Diagnostic and the builder still returns the
// best tree it could assemble around the damage.
func Build(tokens []Token) (*Tree, []Diagnostic) {
	p := &astParser{tokens: tokens}
	body, _, _, _, _ := p.parseUnits(nil, false, nil)
	return &Tree{Body: body}, p.diags
}

type astParser struct {
	tokens []Token
	pos    int
	diags  []Diagnostic
}

func (p *astParser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

// parseUnits consumes leaves and nested blocks until it hits a control
// token whose Kind is in stop, or (if allowRandomAutoClose) a bare
// #RANDOM/#SETRANDOM, or a control token whose Kind belongs to some
// still-open enclosing block (outer), or end of input.
//
// Return values: the accumulated body; which control kind was hit (valid
// only if stopped is true); that token's Arg; stopped (a stop-set kind
// was matched and consumed); autoClosed (a bubble condition was hit and
// left unconsumed for an ancestor's own parseUnits call to pick up).
func (p *astParser) parseUnits(stop map[ControlKind]bool, allowRandomAutoClose bool, outer map[ControlKind]bool) (body []Node, stopKind ControlKind, stopArg string, stopped bool, autoClosed bool) {
	for {
		tok, ok := p.peek()
		if !ok {
			return body, 0, "", false, false
		}
		if tok.Control == nil {
			p.pos++
			body = append(body, LeafNode{Token: tok})
			continue
		}
		k := tok.Control.Kind
		if stop[k] {
			p.pos++
			return body, k, tok.Control.Arg, true, false
		}
		if allowRandomAutoClose && (k == CtrlRandom || k == CtrlSet) {
			return body, k, "", false, true
		}
		if outer[k] {
			// k terminates some still-open enclosing block, not this one:
			// leave it unconsumed so that ancestor's own parseUnits call
			// matches it against its own stop set.
			return body, k, "", false, true
		}
		childOuter := unionStop(stop, outer)
		switch k {
		case CtrlRandom, CtrlSet:
			p.pos++
			body = append(body, p.parseRandomBlock(tok.Control, tok.Pos, childOuter))
		case CtrlIf:
			p.pos++
			body = append(body, p.parseIfChain(tok.Control, tok.Pos, childOuter))
		case CtrlSwitch, CtrlSetSwitch:
			p.pos++
			body = append(body, p.parseSwitchBlock(tok.Control, tok.Pos, childOuter))
		default:
			p.pos++
			p.pushUnexpected(k, tok.Pos)
		}
	}
}

// unionStop merges two control-kind sets without mutating either.
func unionStop(a, b map[ControlKind]bool) map[ControlKind]bool {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(map[ControlKind]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func (p *astParser) pushUnexpected(k ControlKind, pos Pos) {
	switch k {
	case CtrlElseIf, CtrlElse:
		p.diags = append(p.diags, NewDiagnostic(KindElseWithoutIf, pos))
	case CtrlEndIf:
		p.diags = append(p.diags, NewDiagnostic(KindEndIfWithoutIf, pos))
	case CtrlEndRandom:
		p.diags = append(p.diags, NewDiagnostic(KindEndRandomWithoutRandom, pos))
	case CtrlEndSwitch:
		p.diags = append(p.diags, NewDiagnostic(KindEndSwitchWithoutSwitch, pos))
	case CtrlCase, CtrlDef:
		p.diags = append(p.diags, NewDiagnostic(KindCaseOutsideSwitch, pos))
	case CtrlSkip:
		p.diags = append(p.diags, NewDiagnostic(KindSkipOutsideSwitch, pos))
	}
}

func (p *astParser) parseRandomBlock(ctrl *ControlToken, openPos Pos, outer map[ControlKind]bool) RandomNode {
	maxVal, fixed := parseDiscriminantArg(ctrl)
	stop := map[ControlKind]bool{CtrlEndRandom: true}
	body, _, _, stopped, _ := p.parseUnits(stop, false, outer)
	if !stopped {
		p.diags = append(p.diags, NewDiagnostic(KindUnterminatedRandom, openPos))
	}
	return RandomNode{Max: maxVal, Fixed: fixed, Body: body, Pos: openPos}
}

func (p *astParser) parseIfChain(ctrl *ControlToken, openPos Pos, outer map[ControlKind]bool) IfChainNode {
	var arms []IfArm
	val := parseInt(ctrl.Arg)
	ifStop := map[ControlKind]bool{CtrlElseIf: true, CtrlElse: true, CtrlEndIf: true}

	for {
		body, stopKind, stopArg, stopped, autoClosed := p.parseUnits(ifStop, true, outer)
		arms = append(arms, IfArm{Value: val, Body: body})
		if autoClosed {
			return IfChainNode{Arms: arms}
		}
		if !stopped {
			p.diags = append(p.diags, NewDiagnostic(KindUnterminatedIf, openPos))
			return IfChainNode{Arms: arms}
		}
		switch stopKind {
		case CtrlElseIf:
			val = parseInt(stopArg)
			continue
		case CtrlElse:
			elseBody, _, _, stopped2, autoClosed2 := p.parseUnits(map[ControlKind]bool{CtrlEndIf: true}, true, outer)
			if !stopped2 && !autoClosed2 {
				p.diags = append(p.diags, NewDiagnostic(KindUnterminatedIf, openPos))
			}
			return IfChainNode{Arms: arms, ElseBody: elseBody}
		case CtrlEndIf:
			return IfChainNode{Arms: arms}
		}
	}
}

func (p *astParser) parseSwitchBlock(ctrl *ControlToken, openPos Pos, outer map[ControlKind]bool) SwitchNode {
	maxVal, fixed := parseDiscriminantArg(ctrl)
	var arms []CaseArm
	switchStop := map[ControlKind]bool{CtrlCase: true, CtrlDef: true, CtrlSkip: true, CtrlEndSwitch: true}

	for {
		body, stopKind, stopArg, stopped, _ := p.parseUnits(switchStop, false, outer)
		if len(arms) > 0 {
			arms[len(arms)-1].Body = append(arms[len(arms)-1].Body, body...)
		}
		if !stopped {
			p.diags = append(p.diags, NewDiagnostic(KindUnterminatedSwitch, openPos))
			return SwitchNode{Max: maxVal, Fixed: fixed, Arms: arms, Pos: openPos}
		}
		switch stopKind {
		case CtrlCase:
			arms = append(arms, CaseArm{Value: parseInt(stopArg)})
		case CtrlDef:
			arms = append(arms, CaseArm{IsDefault: true})
		case CtrlSkip:
			if len(arms) > 0 {
				arms[len(arms)-1].Skip = true
			}
		case CtrlEndSwitch:
			return SwitchNode{Max: maxVal, Fixed: fixed, Arms: arms, Pos: openPos}
		}
	}
}

// parseDiscriminantArg reads a block's discriminant argument. fixed is
// true for #SETRANDOM/#SETSWITCH, whose arg is used directly rather than
// drawn from rng.
func parseDiscriminantArg(ctrl *ControlToken) (max int64, fixed bool) {
	return parseInt(ctrl.Arg), ctrl.Kind == CtrlSet || ctrl.Kind == CtrlSetSwitch
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
