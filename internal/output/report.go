package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/torosent/crankbench/internal/results"
	"github.com/torosent/crankbench/internal/scenario"
	"github.com/torosent/crankbench/internal/stats"
	"github.com/torosent/crankbench/internal/threshold"
)

// headlineMetrics are the metrics shown per scenario in the summary table.
var headlineMetrics = map[string][]string{
	scenario.NameTaskSpawn:    {"tasks_per_sec", "latency_p95_ms"},
	scenario.NameIOBound:      {"ops_per_sec", "latency_p99_ms"},
	scenario.NameCancellation: {"settle_s", "cancelled", "exceptions"},
}

type group struct {
	scenario string
	library  string
	results  []results.Result
}

// PrintReport outputs a human-readable summary of a result document, one
// row per (scenario, library) pair with metrics averaged over repetitions.
func PrintReport(w io.Writer, doc *results.Document) {
	fmt.Fprintln(w, "\n--- Benchmark Results ---")
	fmt.Fprintf(w, "Run ID:        %s\n", doc.Meta.RunID)
	fmt.Fprintf(w, "Platform:      %s\n", doc.Meta.Platform)
	fmt.Fprintf(w, "GOMAXPROCS:    %d\n", doc.Meta.GOMAXPROCS)
	fmt.Fprintf(w, "Repetitions:   %d\n", doc.Meta.Repetitions)

	groups := groupResults(doc)
	if len(groups) == 0 {
		fmt.Fprintln(w, "\nNo results.")
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tLIBRARY\tREPS\tDURATION (s)\tMETRICS (mean)")
	for _, g := range groups {
		durations := make([]float64, len(g.results))
		for i, r := range g.results {
			durations[i] = r.DurationS
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%s\n",
			g.scenario, g.library, len(g.results), stats.Mean(durations), headline(g))
	}
	tw.Flush()
}

// PrintThresholdResults outputs each threshold outcome followed by a tally.
func PrintThresholdResults(w io.Writer, rs []threshold.Result) {
	if len(rs) == 0 {
		return
	}
	fmt.Fprintln(w, "\n--- Thresholds ---")
	passed := 0
	for _, r := range rs {
		if r.Pass {
			passed++
		}
		fmt.Fprintf(w, "  %s\n", r.Message)
	}
	fmt.Fprintf(w, "Thresholds: %d/%d passed\n", passed, len(rs))
}

func headline(g group) string {
	names := headlineMetrics[g.scenario]
	if len(names) == 0 {
		// Unknown scenario: show everything it reported.
		for _, r := range g.results {
			for _, k := range sortedKeys(r.Metrics) {
				if !slices.Contains(names, k) {
					names = append(names, k)
				}
			}
		}
	}

	parts := make([]string, 0, len(names))
	for _, name := range names {
		values := results.MetricValues(g.results, name)
		if len(values) == 0 {
			continue
		}
		parts = append(parts, name+"="+strconv.FormatFloat(stats.Mean(values), 'g', 6, 64))
	}
	return strings.Join(parts, " ")
}

// groupResults buckets results by (scenario, library), ordering scenarios as
// selected and libraries in run order.
func groupResults(doc *results.Document) []group {
	var scenarios, libraries []string
	scenarios = append(scenarios, doc.Meta.Benchmarks...)
	libraries = append(libraries, doc.Meta.Libraries...)
	for _, r := range doc.Results {
		if !slices.Contains(scenarios, r.Scenario) {
			scenarios = append(scenarios, r.Scenario)
		}
		if !slices.Contains(libraries, r.Library) {
			libraries = append(libraries, r.Library)
		}
	}

	var groups []group
	for _, s := range scenarios {
		for _, lib := range libraries {
			rs := doc.Filter(lib, s)
			if len(rs) == 0 {
				continue
			}
			groups = append(groups, group{scenario: s, library: lib, results: rs})
		}
	}
	return groups
}
