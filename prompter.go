package bms

/*
 This file defines the Prompter capability the model builder consults
 when a definition table sees the same index defined twice. Grounded on
 the same single-operation capability-interface convention as rng.go.
*/

// Resolution is the model builder's decision for a duplicate definition.
type Resolution int

const (
	KeepOlder Resolution = iota
	KeepNewer
)

// Prompter resolves a duplicate-definition conflict: name identifies the
// table (e.g. "WAV"), id is the colliding object id, and older/newer are
// the two competing raw values.
type Prompter interface {
	OnDuplicate(name string, id ObjId, older, newer string) Resolution
}

// staticPrompter always returns the same Resolution, regardless of what
// collided. cmd/bmslex uses it with KeepNewer: BMS authors overwhelmingly
// expect "last definition wins", matching how most existing players behave.
type staticPrompter struct {
	resolution Resolution
}

// NewStaticPrompter returns a Prompter that always resolves duplicates
// the same way.
func NewStaticPrompter(resolution Resolution) Prompter {
	return staticPrompter{resolution: resolution}
}

func (s staticPrompter) OnDuplicate(name string, id ObjId, older, newer string) Resolution {
	return s.resolution
}
