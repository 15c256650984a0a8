package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/tidwall/gjson"

	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/stats"
)

// ErrInvalidBaseline is returned when a baseline is not a JSON result document.
var ErrInvalidBaseline = errors.New("baseline is not a valid JSON result document")

// Delta compares one metric's mean over repetitions against a baseline.
type Delta struct {
	Library  string
	Scenario string
	Metric   string
	Baseline float64
	Current  float64
	// Percent is the relative change from Baseline. It is 0 when the
	// baseline value is 0.
	Percent float64
}

type metricKey struct {
	library, scenario, metric string
}

// LoadBaseline reads a previous result document for comparison. YAML
// documents are re-encoded as JSON.
func LoadBaseline(path string) ([]byte, error) {
	if results.FormatFromPath(path) == results.FormatYAML {
		doc, err := results.Load(path)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := results.Encode(&buf, doc, results.FormatJSON); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidBaseline)
	}
	return data, nil
}

// Compare returns a Delta for every (library, scenario, metric) present in
// both the current document and the raw baseline. Keys the baseline does not
// know about are skipped, so documents from older versions still compare.
func Compare(current *results.Document, baseline []byte) ([]Delta, error) {
	if !gjson.ValidBytes(baseline) {
		return nil, ErrInvalidBaseline
	}

	base := make(map[metricKey][]float64)
	gjson.GetBytes(baseline, "results").ForEach(func(_, entry gjson.Result) bool {
		library := entry.Get("library").String()
		scenario := entry.Get("scenario").String()
		entry.Get("metrics").ForEach(func(name, value gjson.Result) bool {
			if value.Type == gjson.Number {
				k := metricKey{library, scenario, name.String()}
				base[k] = append(base[k], value.Float())
			}
			return true
		})
		return true
	})

	var (
		order []metricKey
		cur   = make(map[metricKey][]float64)
	)
	for _, r := range current.Results {
		for _, name := range sortedKeys(r.Metrics) {
			k := metricKey{r.Library, r.Scenario, name}
			if _, ok := cur[k]; !ok {
				order = append(order, k)
			}
			cur[k] = append(cur[k], r.Metrics[name])
		}
	}

	var deltas []Delta
	for _, k := range order {
		prev, ok := base[k]
		if !ok {
			continue
		}
		d := Delta{
			Library:  k.library,
			Scenario: k.scenario,
			Metric:   k.metric,
			Baseline: stats.Mean(prev),
			Current:  stats.Mean(cur[k]),
		}
		if d.Baseline != 0 {
			d.Percent = (d.Current - d.Baseline) / math.Abs(d.Baseline) * 100
		}
		deltas = append(deltas, d)
	}
	return deltas, nil
}

// PrintComparison outputs deltas as a table.
func PrintComparison(w io.Writer, deltas []Delta) {
	fmt.Fprintln(w, "\n--- Baseline Comparison ---")
	if len(deltas) == 0 {
		fmt.Fprintln(w, "No metrics in common with the baseline.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tLIBRARY\tMETRIC\tBASELINE\tCURRENT\tDELTA")
	for _, d := range deltas {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4g\t%.4g\t%+.1f%%\n",
			d.Scenario, d.Library, d.Metric, d.Baseline, d.Current, d.Percent)
	}
	tw.Flush()
}
