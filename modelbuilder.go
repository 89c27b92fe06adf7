package bms

/*
 This file is the fourth and final pipeline stage: it consumes the
 evaluator's flattened []Token and produces a *Bms. Grounded on the
 teacher's AppendSegment/p.last()-style "accumulate into a growing typed
 collection, state carried across lines" shape (decodeLineOfMediaPlaylist
 in reader.go); the per-lane long-note pairing state machine is grounded
 directly on the format's own Idle/Open description, implemented as a
 small map the way the teacher tracks a single "last thing seen, compare
 on next relevant line" slot.

 Multiple message lines sharing a track and channel are first combined
 into one higher-resolution subdivision (by the LCM of their individual
 lengths) before any event is built from them. Lane-addressed channels
 (notes, invisible notes, long-note regions, mines) are collected across
 the whole chart and sorted into true chronological order before the
 long-note state machines run, since both LNTYPE1 pairing and LNOBJ
 termination require strict chart-wide time order, not per-group order.
*/

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var errMalformedStp = errors.New("malformed #STP value")

// BuildModel runs the full model-construction stage over tokens (already
// lexed, AST-built, and evaluated) and returns the resolved chart plus
// every diagnostic raised while building it.
func BuildModel(tokens []Token, prompter Prompter) (*Bms, []Diagnostic) {
	b := newBuilder(prompter)
	for _, tok := range tokens {
		switch {
		case tok.Header != nil:
			b.header(*tok.Header, tok.Pos)
		case tok.Message != nil:
			b.message(*tok.Message, tok.Pos)
		}
	}
	b.resolveLanes()
	b.checkReferences()
	b.checkEmpty()
	return b.bms, b.diags
}

type laneEvent struct {
	Time ObjTime
	Side Side
	Key  int
	Id   ObjId
	Kind ChannelKind
}

type builder struct {
	bms      *Bms
	prompter Prompter
	diags    []Diagnostic

	// buffered raw payloads per (track, channel), in encounter order,
	// combined into events once the whole chart has been scanned.
	scalarPayloads map[trackChannel][]payloadLine
	lanePayloads   map[trackChannel][]payloadLine

	baseDeclared    bool
	anyIdSeenBefore bool

	// seenHeaders tracks raw values of exact headers already defined, so a
	// repeat definition can be routed through prompter the same way an
	// indexed definition is.
	seenHeaders map[string]string
}

type trackChannel struct {
	track   int
	channel string
}

type payloadLine struct {
	data string
	pos  Pos
}

func newBuilder(prompter Prompter) builder {
	return builder{
		bms:            newBms(),
		prompter:       prompter,
		scalarPayloads: make(map[trackChannel][]payloadLine),
		lanePayloads:   make(map[trackChannel][]payloadLine),
		seenHeaders:    make(map[string]string),
	}
}

// multiValuedExactHeaders holds exact headers that are expected to repeat
// (each occurrence is its own event, not a redefinition of one field) and
// so are exempt from the duplicate-overwrite prompter.
var multiValuedExactHeaders = map[string]bool{
	"STP": true,
}

// checkExactDuplicate applies the prompter uniformly to repeat exact-header
// definitions, the same way setWithPrompt does for indexed ones. Returns
// false when the repeat should be dropped (prompter kept the older value).
func (b *builder) checkExactDuplicate(h HeaderToken, pos Pos) bool {
	if multiValuedExactHeaders[h.Name] {
		return true
	}
	old, dup := b.seenHeaders[h.Name]
	b.seenHeaders[h.Name] = h.Value
	if !dup {
		return true
	}
	b.diags = append(b.diags, NewDiagnostic(KindDuplicateHeaderDefinition, pos, h.Name))
	return b.prompter.OnDuplicate(h.Name, ObjId{}, old, h.Value) != KeepOlder
}

func (b *builder) header(h HeaderToken, pos Pos) {
	if exactHeaders[h.Name] && !b.checkExactDuplicate(h, pos) {
		return
	}
	switch h.Name {
	case "PLAYER":
		b.bms.Player = atoiOr(h.Value, b.bms.Player)
	case "GENRE":
		b.bms.Genre = h.Value
	case "TITLE":
		b.bms.Title = h.Value
	case "SUBTITLE":
		b.bms.Subtitle = h.Value
	case "ARTIST":
		b.bms.Artist = h.Value
	case "SUBARTIST":
		b.bms.Subartist = h.Value
	case "MAKER":
		b.bms.Maker = h.Value
	case "COMMENT":
		b.bms.Comment = h.Value
	case "STP":
		if ev, err := parseStp(h.Value); err == nil {
			b.bms.StpEvents = append(b.bms.StpEvents, ev)
		} else {
			b.diags = append(b.diags, NewDiagnostic(KindMalformedStp, pos, h.Value))
		}
	case "BPM":
		if d, err := ParseDecimal(h.Value); err == nil {
			b.bms.Bpm = d
		}
	case "PLAYLEVEL":
		b.bms.PlayLevel = atoiOr(h.Value, b.bms.PlayLevel)
	case "RANK":
		b.bms.Rank = atoiOr(h.Value, b.bms.Rank)
	case "TOTAL":
		if d, err := ParseDecimal(h.Value); err == nil {
			b.bms.Total = d
		}
	case "STAGEFILE":
		b.bms.StageFile = h.Value
	case "BANNER":
		b.bms.Banner = h.Value
	case "BACKBMP":
		b.bms.BackBmp = h.Value
	case "DIFFICULTY":
		b.bms.Difficulty = h.Value
	case "VOLWAV":
		b.bms.VolWav = atoiOr(h.Value, b.bms.VolWav)
	case "LNTYPE":
		b.bms.LnType = atoiOr(h.Value, b.bms.LnType)
	case "LNOBJ":
		if id, err := ParseObjId(h.Value); err == nil {
			b.bms.LnObj = id.Key(b.bms.Base)
		}
	case "PREVIEW":
		b.bms.Preview = h.Value
	case "BASE":
		if h.Value == "62" {
			if b.anyIdSeenBefore {
				b.diags = append(b.diags, NewDiagnostic(KindLateBaseDeclaration, pos))
			}
			b.bms.Base = Base62
		}
		b.baseDeclared = true
		return
	default:
		b.indexedHeader(h, pos)
		return
	}
}

func (b *builder) indexedHeader(h HeaderToken, pos Pos) {
	prefix, id := splitIndexedHeader(h.Name)
	b.anyIdSeenBefore = true
	key := id.Key(b.bms.Base)

	switch prefix {
	case "WAV":
		setWithPrompt(b.bms.Wav, b.prompter, &b.diags, pos, "WAV", key, h.Value, identity)
	case "BMP":
		setWithPrompt(b.bms.Bmp, b.prompter, &b.diags, pos, "BMP", key, h.Value, identity)
	case "TEXT":
		setWithPrompt(b.bms.Text, b.prompter, &b.diags, pos, "TEXT", key, h.Value, identity)
	case "ARGB":
		setWithPrompt(b.bms.Argb, b.prompter, &b.diags, pos, "ARGB", key, h.Value, identity)
	case "BPM":
		d, err := ParseDecimal(h.Value)
		if err != nil {
			return
		}
		setWithPrompt(b.bms.BpmDef, b.prompter, &b.diags, pos, "BPM", key, d, Decimal.String)
	case "STOP":
		v, err := strconv.ParseInt(h.Value, 10, 64)
		if err != nil {
			return
		}
		setWithPrompt(b.bms.Stop, b.prompter, &b.diags, pos, "STOP", key, DecimalFromInt(v), Decimal.String)
	case "SCROLL":
		d, err := ParseDecimal(h.Value)
		if err != nil {
			return
		}
		setWithPrompt(b.bms.Scroll, b.prompter, &b.diags, pos, "SCROLL", key, d, Decimal.String)
	case "SPEED":
		d, err := ParseDecimal(h.Value)
		if err != nil {
			return
		}
		setWithPrompt(b.bms.Speed, b.prompter, &b.diags, pos, "SPEED", key, d, Decimal.String)
	default:
		b.diags = append(b.diags, NewDiagnostic(KindUnknownHeader, pos, "#"+h.Name))
	}
}

func identity(s string) string { return s }

// setWithPrompt sets id in table, consulting prompter and pushing a
// duplicate-definition diagnostic whenever id was already defined.
func setWithPrompt[T any](table *DefTable[T], prompter Prompter, diags *[]Diagnostic, pos Pos, name string, id ObjId, v T, render func(T) string) {
	old, existed := table.Get(id)
	if existed {
		*diags = append(*diags, NewDiagnostic(KindDuplicateIndexedDefinition, pos, name+id.String()))
		if prompter.OnDuplicate(name, id, render(old), render(v)) == KeepOlder {
			return
		}
	}
	table.Set(id, v)
}

func (b *builder) message(m MessageToken, pos Pos) {
	b.anyIdSeenBefore = true
	ch, ok := classifyChannel(m.Channel)
	if !ok {
		b.diags = append(b.diags, NewDiagnostic(KindInvalidChannelNumber, pos, m.Channel))
		return
	}
	if ch.Kind == ChannelMeasureLen {
		d, err := ParseDecimal(m.Data)
		if err != nil {
			return
		}
		b.bms.MeasureLength[m.Track] = d
		return
	}
	tc := trackChannel{track: m.Track, channel: m.Channel}
	line := payloadLine{data: m.Data, pos: pos}
	switch ch.Kind {
	case ChannelNote, ChannelInvisible, ChannelLongNote, ChannelMine:
		b.lanePayloads[tc] = append(b.lanePayloads[tc], line)
	default:
		b.scalarPayloads[tc] = append(b.scalarPayloads[tc], line)
	}
}

// resolveLanes combines buffered payloads into events. Scalar channels
// resolve group by group in (track, channel) order, after which the BPM
// and BGA event lists (fed by more than one channel) are stably sorted by
// time; lane channels are flattened and sorted by time first, then walked
// once by the long-note state machines.
func (b *builder) resolveLanes() {
	scalarKeys := make([]trackChannel, 0, len(b.scalarPayloads))
	for tc := range b.scalarPayloads {
		scalarKeys = append(scalarKeys, tc)
	}
	sort.Slice(scalarKeys, func(i, j int) bool {
		a, c := scalarKeys[i], scalarKeys[j]
		return a.track < c.track || (a.track == c.track && a.channel < c.channel)
	})
	for _, tc := range scalarKeys {
		lines := b.scalarPayloads[tc]
		ch, _ := classifyChannel(tc.channel)
		for _, slot := range combinePayloads(lines) {
			t, err := NewObjTime(tc.track, int64(slot.Num), int64(slot.Den))
			if err != nil || slot.Id.IsNone() {
				continue
			}
			b.resolveScalarEvent(ch, t, slot.Id)
		}
	}
	sort.SliceStable(b.bms.BpmEvents, func(i, j int) bool { return b.bms.BpmEvents[i].Time.Less(b.bms.BpmEvents[j].Time) })
	sort.SliceStable(b.bms.BgaEvents, func(i, j int) bool { return b.bms.BgaEvents[i].Time.Less(b.bms.BgaEvents[j].Time) })

	var flat []laneEvent
	for tc, lines := range b.lanePayloads {
		ch, _ := classifyChannel(tc.channel)
		for _, slot := range combinePayloads(lines) {
			if slot.Id.IsNone() {
				continue
			}
			t, err := NewObjTime(tc.track, int64(slot.Num), int64(slot.Den))
			if err != nil {
				continue
			}
			flat = append(flat, laneEvent{Time: t, Side: ch.Side, Key: ch.Key, Id: slot.Id, Kind: ch.Kind})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		a, c := flat[i], flat[j]
		if !a.Time.Equal(c.Time) {
			return a.Time.Less(c.Time)
		}
		return a.Kind < c.Kind || (a.Kind == c.Kind && (a.Side < c.Side || (a.Side == c.Side && a.Key < c.Key)))
	})
	b.runLaneStateMachine(flat)
}

func (b *builder) resolveScalarEvent(ch Channel, t ObjTime, id ObjId) {
	switch ch.Kind {
	case ChannelBgm:
		b.bms.Bgm = append(b.bms.Bgm, BgmEvent{Time: t, WavId: id})
	case ChannelBpmDef:
		v, err := strconv.ParseInt(id.String(), 16, 64)
		if err != nil {
			return
		}
		b.bms.BpmEvents = append(b.bms.BpmEvents, BpmEvent{Time: t, Bpm: DecimalFromInt(v)})
	case ChannelBpmRef:
		if d, ok := b.bms.BpmDef.Get(id.Key(b.bms.Base)); ok {
			b.bms.BpmEvents = append(b.bms.BpmEvents, BpmEvent{Time: t, Bpm: d})
		} else {
			b.diags = append(b.diags, NewDiagnostic(KindUndefinedObjectReference, Span{}, id.String()))
		}
	case ChannelStopRef:
		if d, ok := b.bms.Stop.Get(id.Key(b.bms.Base)); ok {
			b.bms.StopEvents = append(b.bms.StopEvents, StopEvent{Time: t, Duration: d})
		} else {
			b.diags = append(b.diags, NewDiagnostic(KindUndefinedObjectReference, Span{}, id.String()))
		}
	case ChannelScrollRef:
		if d, ok := b.bms.Scroll.Get(id.Key(b.bms.Base)); ok {
			b.bms.ScrollEvents = append(b.bms.ScrollEvents, ScrollEvent{Time: t, Factor: d})
		} else {
			b.diags = append(b.diags, NewDiagnostic(KindUndefinedObjectReference, Span{}, id.String()))
		}
	case ChannelSpeedRef:
		if d, ok := b.bms.Speed.Get(id.Key(b.bms.Base)); ok {
			b.bms.SpeedEvents = append(b.bms.SpeedEvents, SpeedEvent{Time: t, Factor: d})
		} else {
			b.diags = append(b.diags, NewDiagnostic(KindUndefinedObjectReference, Span{}, id.String()))
		}
	case ChannelBga, ChannelBgaArgb, ChannelBgaPoor, ChannelBgaLayer, ChannelBgaLayer2:
		b.bms.BgaEvents = append(b.bms.BgaEvents, BgaEvent{Time: t, Layer: ch.Kind, BmpId: id})
	}
}

type laneKey struct {
	side Side
	key  int
}

type laneState struct {
	lnOpen       bool
	lnStart      ObjTime
	lnId         ObjId
	pendingIdx   int
	hasPendingID bool
}

// runLaneStateMachine walks flat (already sorted by Time) and resolves
// LNTYPE1 region pairs and LNOBJ termination markers per lane.
func (b *builder) runLaneStateMachine(flat []laneEvent) {
	states := make(map[laneKey]*laneState)
	excluded := make(map[int]bool)

	stateFor := func(k laneKey) *laneState {
		st, ok := states[k]
		if !ok {
			st = &laneState{}
			states[k] = st
		}
		return st
	}

	for _, ev := range flat {
		k := laneKey{side: ev.Side, key: ev.Key}
		switch ev.Kind {
		case ChannelMine:
			b.bms.Mines = append(b.bms.Mines, MineNote{Time: ev.Time, Side: ev.Side, Key: ev.Key, Damage: ev.Id.Index(Base36)})

		case ChannelLongNote:
			st := stateFor(k)
			if !st.lnOpen {
				st.lnOpen = true
				st.lnStart = ev.Time
				st.lnId = ev.Id
				continue
			}
			if ev.Time.Equal(st.lnStart) {
				b.diags = append(b.diags, NewDiagnostic(KindDegenerateLongNote, Span{}, laneLabel(k)))
			}
			b.bms.LongNotes = append(b.bms.LongNotes, LongNote{Start: st.lnStart, End: ev.Time, Side: ev.Side, Key: ev.Key, WavId: st.lnId})
			st.lnOpen = false

		case ChannelInvisible:
			b.bms.Invisible = append(b.bms.Invisible, Note{Time: ev.Time, Side: ev.Side, Key: ev.Key, WavId: ev.Id})

		case ChannelNote:
			st := stateFor(k)
			if !b.bms.LnObj.IsNone() && ev.Id.Equal(b.bms.LnObj, b.bms.Base) {
				if !st.hasPendingID {
					b.diags = append(b.diags, NewDiagnostic(KindUnpairedLongNote, Span{}, laneLabel(k)))
					continue
				}
				note := b.bms.Notes[st.pendingIdx]
				b.bms.LongNotes = append(b.bms.LongNotes, LongNote{Start: note.Time, End: ev.Time, Side: ev.Side, Key: ev.Key, WavId: note.WavId})
				excluded[st.pendingIdx] = true
				st.hasPendingID = false
				continue
			}
			if st.hasPendingID && b.bms.Notes[st.pendingIdx].Time.Equal(ev.Time) {
				old := b.bms.Notes[st.pendingIdx]
				b.diags = append(b.diags, NewDiagnostic(KindDuplicateVisibleNote, Span{}, laneLabel(k)))
				if b.prompter.OnDuplicate("NOTE", ev.Id, old.WavId.String(), ev.Id.String()) == KeepNewer {
					b.bms.Notes[st.pendingIdx].WavId = ev.Id
				}
				continue
			}
			idx := len(b.bms.Notes)
			b.bms.Notes = append(b.bms.Notes, Note{Time: ev.Time, Side: ev.Side, Key: ev.Key, WavId: ev.Id})
			st.pendingIdx = idx
			st.hasPendingID = true
		}
	}

	for k, st := range states {
		if st.lnOpen {
			b.diags = append(b.diags, NewDiagnostic(KindDanglingLongNote, Span{}, laneLabel(k)))
		}
	}

	if len(excluded) > 0 {
		kept := b.bms.Notes[:0]
		for i, n := range b.bms.Notes {
			if excluded[i] {
				continue
			}
			kept = append(kept, n)
		}
		b.bms.Notes = kept
	}
}

func laneLabel(k laneKey) string {
	side := "1P"
	if k.side == Side2 {
		side = "2P"
	}
	return side + ":" + strconv.Itoa(k.key)
}

func (b *builder) checkReferences() {
	check := func(id ObjId) {
		if id.IsNone() {
			return
		}
		if _, ok := b.bms.Wav.Get(id.Key(b.bms.Base)); !ok {
			b.diags = append(b.diags, NewDiagnostic(KindUndefinedObjectReference, Span{}, id.String()))
		}
	}
	for _, n := range b.bms.Bgm {
		check(n.WavId)
	}
	for _, n := range b.bms.Notes {
		check(n.WavId)
	}
	for _, n := range b.bms.Invisible {
		check(n.WavId)
	}
	for _, n := range b.bms.LongNotes {
		check(n.WavId)
	}
}

func (b *builder) checkEmpty() {
	if len(b.bms.Notes) == 0 && len(b.bms.LongNotes) == 0 && len(b.bms.Bgm) == 0 && len(b.bms.Invisible) == 0 {
		b.diags = append(b.diags, NewDiagnostic(KindEmptyChart, Span{}))
	}
}

func atoiOr(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// parseStp decodes a "#STP" value: an 8-digit token (optionally split by
// whitespace into two 4-digit fields), the first 4 digits a position in
// thousandths of a measure counted from the start of track 000 (track
// pos/1000, offset pos%1000), the last 4 a stop duration in milliseconds.
func parseStp(value string) (StpEvent, error) {
	raw := strings.Join(strings.Fields(value), "")
	if len(raw) != 8 {
		return StpEvent{}, errMalformedStp
	}
	pos, err := strconv.Atoi(raw[:4])
	if err != nil {
		return StpEvent{}, err
	}
	durMs, err := strconv.Atoi(raw[4:])
	if err != nil {
		return StpEvent{}, err
	}
	t, err := NewObjTime(pos/1000, int64(pos%1000), 1000)
	if err != nil {
		return StpEvent{}, err
	}
	return StpEvent{Position: t, DurationMs: durMs}, nil
}

// slot is one resolved object placement after combining same-(track,
// channel) payload lines by LCM.
type slot struct {
	Num int
	Den int
	Id  ObjId
}

// combinePayloads merges every payload line sharing a (track, channel)
// into one higher-resolution subdivision: the LCM of each line's own
// subdivision count. On a slot collision between lines (two lines both
// place a non-"00" id at the same resolved position), the first
// occurrence wins; this is deterministic and never depends on map order.
func combinePayloads(lines []payloadLine) []slot {
	type parsedLine struct {
		k   int
		ids []ObjId
	}
	var parsed []parsedLine
	lcm := 1
	for _, pl := range lines {
		k := len(pl.data) / 2
		if k == 0 {
			continue
		}
		ids := make([]ObjId, k)
		for i := 0; i < k; i++ {
			id, err := ParseObjId(pl.data[2*i : 2*i+2])
			if err != nil {
				id = NoneObjId
			}
			ids[i] = id
		}
		parsed = append(parsed, parsedLine{k: k, ids: ids})
		lcm = lcmInt(lcm, k)
	}

	occupied := make(map[int]ObjId)
	var order []int
	for _, pl := range parsed {
		scale := lcm / pl.k
		for i, id := range pl.ids {
			if id.IsNone() {
				continue
			}
			slotIdx := i * scale
			if _, exists := occupied[slotIdx]; exists {
				continue
			}
			occupied[slotIdx] = id
			order = append(order, slotIdx)
		}
	}
	sort.Ints(order)

	out := make([]slot, 0, len(order))
	for _, idx := range order {
		out = append(out, slot{Num: idx, Den: lcm, Id: occupied[idx]})
	}
	return out
}

func gcdInt(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcmInt(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcdInt(a, b) * b
}
