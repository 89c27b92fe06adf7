package bms

/*
 This file is the third pipeline stage: it walks a Tree, drawing one Rng
 value per #RANDOM/#SWITCH block it actually reaches, and flattens the
 selected branches back into a []Token for the model builder. Grounded
 on the same decodingState-threading idiom as astbuilder.go; the laziness
 requirement (no draw for a branch that is never selected) falls out of
 the tree walk only visiting nodes it descends into.
*/

// Evaluate resolves every RANDOM/IF/SWITCH block in tree using rng and
// returns the flattened token stream the model builder consumes, plus
// any diagnostics raised along the way (currently: out-of-range
// discriminants, resolved as "block unselected" per design decision).
func Evaluate(tree *Tree, rng Rng) ([]Token, []Diagnostic) {
	e := &evaluator{rng: rng}
	var out []Token
	e.evalNodes(tree.Body, &out)
	return out, e.diags
}

type evaluator struct {
	rng         Rng
	diags       []Diagnostic
	randomStack []int64
}

func (e *evaluator) evalNodes(nodes []Node, out *[]Token) {
	for _, n := range nodes {
		switch v := n.(type) {
		case LeafNode:
			*out = append(*out, v.Token)
		case RandomNode:
			e.evalRandom(v, out)
		case IfChainNode:
			e.evalIfChain(v, out)
		case SwitchNode:
			e.evalSwitch(v, out)
		}
	}
}

func (e *evaluator) evalRandom(r RandomNode, out *[]Token) {
	val := r.Max
	if !r.Fixed {
		val = e.rng.NextInRange(r.Max)
	}
	if val < 1 || val > r.Max {
		e.diags = append(e.diags, NewDiagnostic(KindDiscriminantOutOfRange, r.Pos, val, r.Max))
		return
	}
	e.randomStack = append(e.randomStack, val)
	e.evalNodes(r.Body, out)
	e.randomStack = e.randomStack[:len(e.randomStack)-1]
}

func (e *evaluator) currentRandom() (int64, bool) {
	if len(e.randomStack) == 0 {
		return 0, false
	}
	return e.randomStack[len(e.randomStack)-1], true
}

// evalIfChain selects at most one arm (or the else body) and only walks
// that one: a RandomNode nested inside an unselected arm is never
// descended into, so it never draws from rng.
func (e *evaluator) evalIfChain(chain IfChainNode, out *[]Token) {
	disc, ok := e.currentRandom()
	if !ok {
		return
	}
	for _, arm := range chain.Arms {
		if arm.Value == disc {
			e.evalNodes(arm.Body, out)
			return
		}
	}
	if chain.ElseBody != nil {
		e.evalNodes(chain.ElseBody, out)
	}
}

// evalSwitch draws once (or, for #SETSWITCH, uses the fixed value
// without drawing), then walks every arm from the first match onward
// (DEF included) until a #SKIP-marked arm ends the run, per the format's
// CASE/DEF fall-through convention.
func (e *evaluator) evalSwitch(sw SwitchNode, out *[]Token) {
	disc := sw.Max
	if !sw.Fixed {
		disc = e.rng.NextInRange(sw.Max)
	}
	if disc < 1 || disc > sw.Max {
		e.diags = append(e.diags, NewDiagnostic(KindDiscriminantOutOfRange, sw.Pos, disc, sw.Max))
		return
	}
	matched := false
	for _, arm := range sw.Arms {
		if !matched {
			if !arm.IsDefault && arm.Value != disc {
				continue
			}
			matched = true
		}
		e.evalNodes(arm.Body, out)
		if arm.Skip {
			return
		}
	}
}
