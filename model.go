package bms

/*
 This file is the model the fourth pipeline stage produces: a fully
 resolved, playable chart. Grounded on the teacher's MasterPlaylist/
 MediaPlaylist/Variant/MediaSegment shapes (structure.go) — plain
 structs, exported fields, slices for repeated data, a doc comment on
 every exported field.
*/

// DefTable is an insertion-ordered table keyed by ObjId. Iteration order
// follows first-definition order, never map hash order, since chart
// output must be deterministic across runs.
type DefTable[T any] struct {
	order  []ObjId
	values map[ObjId]T
}

// NewDefTable returns an empty DefTable.
func NewDefTable[T any]() *DefTable[T] {
	return &DefTable[T]{values: make(map[ObjId]T)}
}

// Set stores v under id, returning the previous value and whether one
// existed. New ids are appended to the iteration order; re-setting an
// existing id does not move it.
func (d *DefTable[T]) Set(id ObjId, v T) (old T, existed bool) {
	old, existed = d.values[id]
	if !existed {
		d.order = append(d.order, id)
	}
	d.values[id] = v
	return old, existed
}

// Get looks up id.
func (d *DefTable[T]) Get(id ObjId) (T, bool) {
	v, ok := d.values[id]
	return v, ok
}

// Keys returns every defined id in insertion order.
func (d *DefTable[T]) Keys() []ObjId {
	return d.order
}

// Len reports how many ids are defined.
func (d *DefTable[T]) Len() int {
	return len(d.order)
}

// Note is a single playable or invisible object at a point in the chart.
type Note struct {
	Time  ObjTime
	Side  Side
	Key   int
	WavId ObjId
}

// LongNote is a held note spanning [Start, End), produced either by a
// paired LNTYPE1 channel region or by an LNOBJ termination marker
// closing off a preceding visible Note.
type LongNote struct {
	Start ObjTime
	End   ObjTime
	Side  Side
	Key   int
	WavId ObjId
}

// MineNote is a landmine object: touching it during play damages the
// player rather than scoring.
type MineNote struct {
	Time   ObjTime
	Side   Side
	Key    int
	Damage int // base-36 value of the object id, the historical encoding
}

// BgmEvent plays a background sample with no associated lane.
type BgmEvent struct {
	Time  ObjTime
	WavId ObjId
}

// BpmEvent changes the chart's tempo at Time.
type BpmEvent struct {
	Time ObjTime
	Bpm  Decimal
}

// StopEvent pauses scroll for Duration (in 1/192 units of a whole note
// at the tempo in effect) at Time.
type StopEvent struct {
	Time     ObjTime
	Duration Decimal
}

// ScrollEvent changes the scroll-speed multiplier at Time.
type ScrollEvent struct {
	Time   ObjTime
	Factor Decimal
}

// SpeedEvent changes the note-fall speed multiplier at Time.
type SpeedEvent struct {
	Time   ObjTime
	Factor Decimal
}

// BgaEvent switches a background-animation layer's displayed bitmap.
type BgaEvent struct {
	Time  ObjTime
	Layer ChannelKind // ChannelBga, ChannelBgaArgb, ChannelBgaPoor, ChannelBgaLayer, or ChannelBgaLayer2
	BmpId ObjId
}

// StpEvent is a "#STP" absolute-timestamp micro-stop, distinct from a
// channel-09 #STOPxx reference: LR2/beatoraja encode it as one 8-digit
// value, the first 4 digits a position in thousandths of a measure counted
// from the start of track 000 (so 1500 is half-way through track 1) and
// the last 4 a stop duration in milliseconds.
type StpEvent struct {
	Position   ObjTime
	DurationMs int
}

// Bms is the fully resolved chart the model builder produces.
type Bms struct {
	Player     int
	Genre      string
	Title      string
	Subtitle   string
	Artist     string
	Subartist  string
	Maker      string
	Comment    string
	Bpm        Decimal
	PlayLevel  int
	Rank       int
	Total      Decimal
	StageFile  string
	Banner     string
	BackBmp    string
	Difficulty string
	Base       Base
	VolWav     int
	LnType     int
	LnObj      ObjId
	Preview    string

	Wav    *DefTable[string]
	Bmp    *DefTable[string]
	BpmDef *DefTable[Decimal]
	Stop   *DefTable[Decimal]
	Scroll *DefTable[Decimal]
	Speed  *DefTable[Decimal]
	Text   *DefTable[string]
	Argb   *DefTable[string]

	MeasureLength map[int]Decimal

	Bgm       []BgmEvent
	Notes     []Note
	Invisible []Note
	LongNotes []LongNote
	Mines     []MineNote

	BpmEvents    []BpmEvent
	StopEvents   []StopEvent
	ScrollEvents []ScrollEvent
	SpeedEvents  []SpeedEvent
	BgaEvents    []BgaEvent
	StpEvents    []StpEvent
}

// newBms returns a Bms with every table initialized and the format's
// historical defaults applied (base 36, LNTYPE1, no LNOBJ marker).
func newBms() *Bms {
	return &Bms{
		Base:          Base36,
		LnType:        1,
		LnObj:         NoneObjId,
		Wav:           NewDefTable[string](),
		Bmp:           NewDefTable[string](),
		BpmDef:        NewDefTable[Decimal](),
		Stop:          NewDefTable[Decimal](),
		Scroll:        NewDefTable[Decimal](),
		Speed:         NewDefTable[Decimal](),
		Text:          NewDefTable[string](),
		Argb:          NewDefTable[string](),
		MeasureLength: make(map[int]Decimal),
	}
}
