// Command bmslex runs a BMS chart through the full decode pipeline and
// prints a summary plus every diagnostic raised along the way.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/bmscore/bms"
)

func main() {
	var seed int64
	var quiet bool
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for #RANDOM/#SWITCH discriminant draws")
	flag.BoolVar(&quiet, "quiet", false, "suppress diagnostic output, print only the summary")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: bmslex [-seed N] [-quiet] <path.bms>")
		os.Exit(2)
	}

	source, err := readFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("bmslex: %v", err)
	}

	chart, diags, err := decode(source, seed)
	if err != nil {
		log.Fatalf("bmslex: %v", err)
	}

	if !quiet {
		fmt.Fprint(os.Stderr, bms.RenderAll(diags))
	}
	printSummary(os.Stdout, chart, diags)

	if bms.HasErrors(diags) {
		os.Exit(1)
	}
}

// decode runs all four pipeline stages over source, propagating every
// stage's diagnostics into one slice in pipeline order.
func decode(source string, seed int64) (*bms.Bms, []bms.Diagnostic, error) {
	var diags []bms.Diagnostic

	tokens, lexDiags := bms.Lex(source)
	diags = append(diags, lexDiags...)

	tree, buildDiags := bms.Build(tokens)
	diags = append(diags, buildDiags...)

	evaluated, evalDiags := bms.Evaluate(tree, bms.NewSeededRng(seed))
	diags = append(diags, evalDiags...)

	chart, modelDiags := bms.BuildModel(evaluated, bms.NewStaticPrompter(bms.KeepNewer))
	diags = append(diags, modelDiags...)

	return chart, diags, nil
}

func readFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printSummary(w io.Writer, chart *bms.Bms, diags []bms.Diagnostic) {
	var warnings, errors int
	for _, d := range diags {
		if d.Severity() == bms.Error {
			errors++
		} else {
			warnings++
		}
	}
	fmt.Fprintf(w, "%s - %s\n", chart.Title, chart.Artist)
	fmt.Fprintf(w, "notes=%d long=%d mines=%d bgm=%d\n", len(chart.Notes), len(chart.LongNotes), len(chart.Mines), len(chart.Bgm))
	fmt.Fprintf(w, "diagnostics: %d warning(s), %d error(s)\n", warnings, errors)
}
