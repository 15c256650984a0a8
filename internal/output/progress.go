package output

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/torosent/crankbench/internal/results"
)

// WriteProgress prints the one-line summary of a finished benchmark:
//
//	task_spawn on goroutine (rep 1) -> duration_s=0.0421 failures=0 ...
//
// It is called between benchmark invocations, never during one.
func WriteProgress(w io.Writer, r results.Result) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%s on %s (rep %d) -> %s\n", r.Scenario, r.Library, r.Rep, FormatMetrics(r.Metrics))
}

// FormatMetrics renders metrics as space-separated key=value pairs sorted by key.
func FormatMetrics(m map[string]float64) string {
	keys := sortedKeys(m)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(m[k], 'g', 6, 64)
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
