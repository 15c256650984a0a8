// Package runner orchestrates benchmark execution for crankbench.
//
// A Runner walks the cross product of selected backends, scenarios and
// repetitions strictly sequentially:
//
//	for each library
//		for each scenario
//			for rep := 1..Repetitions
//				backend.Run(scenario.Run)
//
// Only one benchmark executes at any time, so no two backends ever compete
// for the scheduler and the progress line never interleaves with a
// measurement.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Libraries:   []string{"goroutine", "conc"},
//		Benchmarks:  []string{"task_spawn"},
//		Repetitions: 3,
//		Progress:    os.Stdout,
//	})
//	doc, err := r.Run(ctx)
//
// Each finished combination becomes one [results.Result] carrying a fresh
// snapshot of the scenario parameters, the repetition index and the wall
// time of the whole backend.Run call.
//
// # Error Handling
//
// The runner fails fast. Unknown names are rejected before anything runs;
// any error returned by a backend or scenario aborts the matrix and is
// wrapped with the scenario, library and repetition that produced it.
// Cancelling ctx stops the run at the next suspension point.
package runner
