// Package bms implements a Be-Music Source chart decoder: a four-stage
// pipeline that turns raw BMS source text into a fully resolved, playable
// chart.
//
// Lex tokenizes source lines into headers, channel messages, and
// control-flow directives. Build assembles the control-flow tokens into a
// Tree of nested #RANDOM/#IF/#SWITCH blocks. Evaluate walks that tree with
// an injected Rng, drawing one discriminant per block it actually
// reaches, and flattens the selected branches into a token stream.
// BuildModel consumes that stream and produces a *Bms: headers, sample
// and timing definition tables, and fully time-ordered notes, long notes,
// mines, and tempo/scroll/speed/BGA events.
//
// Every stage accumulates Diagnostics instead of aborting; a chart with
// warnings or even most kinds of errors still produces a usable model.
package bms
