// Package results defines the persisted result document and how it is
// written to and read from disk.
package results

import (
	"fmt"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
)

// Result is the outcome of one (library, scenario, repetition) execution.
type Result struct {
	Library   string             `json:"library" yaml:"library"`
	Scenario  string             `json:"scenario" yaml:"scenario"`
	Params    map[string]any     `json:"params" yaml:"params"`
	Rep       int                `json:"rep" yaml:"rep"`
	DurationS float64            `json:"duration_s" yaml:"duration_s"`
	Metrics   map[string]float64 `json:"metrics" yaml:"metrics"`
}

// Meta describes the invocation that produced a document.
type Meta struct {
	Platform    string   `json:"platform" yaml:"platform"`
	Timestamp   float64  `json:"timestamp" yaml:"timestamp"`
	Benchmarks  []string `json:"benchmarks" yaml:"benchmarks"`
	Libraries   []string `json:"libraries" yaml:"libraries"`
	Repetitions int      `json:"repetitions" yaml:"repetitions"`
	RunID       string   `json:"run_id" yaml:"run_id"`
	GoVersion   string   `json:"go_version" yaml:"go_version"`
	GOMAXPROCS  int      `json:"gomaxprocs" yaml:"gomaxprocs"`
	NumCPU      int      `json:"num_cpu" yaml:"num_cpu"`
	OS          string   `json:"os" yaml:"os"`
	Arch        string   `json:"arch" yaml:"arch"`
}

// Document is the full result set of one harness invocation.
type Document struct {
	Meta    Meta     `json:"meta" yaml:"meta"`
	Results []Result `json:"results" yaml:"results"`
}

// NewMeta fills in the platform identity for a run that finished at now.
func NewMeta(now time.Time, benchmarks, libraries []string, repetitions int) Meta {
	return Meta{
		Platform:    Platform(),
		Timestamp:   float64(now.UnixNano()) / float64(time.Second),
		Benchmarks:  append([]string(nil), benchmarks...),
		Libraries:   append([]string(nil), libraries...),
		Repetitions: repetitions,
		RunID:       ulid.Make().String(),
		GoVersion:   runtime.Version(),
		GOMAXPROCS:  runtime.GOMAXPROCS(0),
		NumCPU:      runtime.NumCPU(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
	}
}

// Platform identifies the host the way the meta block records it.
func Platform() string {
	return fmt.Sprintf("%s-%s-%s", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// Filter returns the results matching library and scenario, in document order.
// An empty argument matches everything.
func (d *Document) Filter(library, scenario string) []Result {
	var out []Result
	for _, r := range d.Results {
		if library != "" && r.Library != library {
			continue
		}
		if scenario != "" && r.Scenario != scenario {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MetricValues collects one metric across results, skipping results that do
// not report it.
func MetricValues(rs []Result, metric string) []float64 {
	values := make([]float64, 0, len(rs))
	for _, r := range rs {
		if v, ok := r.Metrics[metric]; ok {
			values = append(values, v)
		}
	}
	return values
}
